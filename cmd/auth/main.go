package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/aussiebroadwan/taskgate/cmd/auth/internal/commands"
	"github.com/aussiebroadwan/taskgate/internal/auth/app"
)

var (
	version = app.BuildVersion
	cli     struct {
		Serve   commands.ServeCmd   `cmd:"" default:"1" help:"Run the HTTP server (default)"`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply database migrations and exit"`
		Prune   commands.PruneCmd   `cmd:"" help:"Delete expired and revoked refresh tokens"`
		Users   commands.UsersCmd   `cmd:"" help:"Manage user accounts"`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("taskgate"),
		kong.Description("Credential and session service for the task API. Configured through AUTH_* environment variables."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Config: app.LoadConfig(), Version: version})
	cmd.FatalIfErrorf(err)
}
