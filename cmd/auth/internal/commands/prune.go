package commands

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/taskgate/internal/auth/app"
	"github.com/aussiebroadwan/taskgate/internal/auth/service"
)

type PruneCmd struct{}

func (p *PruneCmd) Run(ctx context.Context, globals *Globals) error {
	db, err := openStore(ctx, globals)
	if err != nil {
		return err
	}
	defer db.Close()

	hk := service.NewHousekeepingService(db, app.NewLogger(globals.Config), 0)
	n, err := hk.PruneRefreshTokens(ctx)
	if err != nil {
		return fmt.Errorf("prune refresh tokens: %w", err)
	}

	fmt.Printf("pruned %d refresh tokens\n", n)
	return nil
}
