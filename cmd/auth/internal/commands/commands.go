package commands

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/taskgate/internal/auth/app"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
)

// Globals is bound into every command's Run.
type Globals struct {
	Config  app.Config
	Version string
}

// openStore opens and migrates the configured store for one-shot commands.
// Only the store settings are checked; these commands never sign tokens.
func openStore(ctx context.Context, g *Globals) (store.Store, error) {
	if err := g.Config.ValidateStore(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.OpenStore(ctx, g.Config)
}
