package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "pgx5://u:p@db:5432/x?sslmode=disable", migrateURL("postgres://u:p@db:5432/x?sslmode=disable"))
	require.Equal(t, "pgx5://db/x", migrateURL("postgresql://db/x"))
	require.Equal(t, "pgx5://db/x", migrateURL("pgx5://db/x"))
}
