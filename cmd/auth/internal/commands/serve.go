package commands

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/taskgate/internal/auth/app"
)

type ServeCmd struct {
	Port int `help:"HTTP port; overrides PORT" default:"0"`
}

func (s *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := globals.Config
	if s.Port != 0 {
		cfg.Port = s.Port
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run()
}
