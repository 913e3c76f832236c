package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/taskgate/internal/auth/app"
	"github.com/stretchr/testify/require"
)

func TestStoreCommandsRunWithoutSigningSecret(t *testing.T) {
	ctx := context.Background()
	globals := &Globals{Config: app.Config{
		Store:        app.StoreSQLite,
		DatabaseFile: filepath.Join(t.TempDir(), "auth.db"),
		LogLevel:     "error",
	}}

	require.NoError(t, (&MigrateCmd{}).Run(ctx, globals))
	require.NoError(t, (&PruneCmd{}).Run(ctx, globals))
}

func TestStoreCommandsRejectIncompleteStoreConfig(t *testing.T) {
	globals := &Globals{Config: app.Config{Store: app.StorePostgres}}

	err := (&MigrateCmd{}).Run(context.Background(), globals)
	require.ErrorContains(t, err, "AUTH_DATABASE_URL")
}
