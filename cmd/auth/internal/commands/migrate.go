package commands

import (
	"context"

	"github.com/aussiebroadwan/taskgate/internal/auth/app"
)

type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	db, err := openStore(ctx, globals)
	if err != nil {
		return err
	}
	defer db.Close()

	app.NewLogger(globals.Config).Info("database migrations applied successfully", "store", globals.Config.Store)
	return nil
}
