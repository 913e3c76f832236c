package commands

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/taskgate/internal/auth/service"
)

type UsersCmd struct {
	SetActive SetActiveCmd `cmd:"" help:"Activate or deactivate a user; deactivating revokes their refresh tokens"`
	GrantRole GrantRoleCmd `cmd:"" help:"Grant a role to a user, creating the role if needed"`
}

type SetActiveCmd struct {
	Username string `arg:"" help:"Username"`
	State    string `arg:"" enum:"active,inactive" help:"active or inactive"`
}

func (c *SetActiveCmd) Run(ctx context.Context, globals *Globals) error {
	db, err := openStore(ctx, globals)
	if err != nil {
		return err
	}
	defer db.Close()

	users := &service.UserService{Store: db}
	if err := users.SetActive(ctx, c.Username, c.State == "active"); err != nil {
		return err
	}

	fmt.Printf("%s is now %s\n", c.Username, c.State)
	return nil
}

type GrantRoleCmd struct {
	Username string `arg:"" help:"Username"`
	Role     string `arg:"" help:"Role name, e.g. ADMIN"`
}

func (c *GrantRoleCmd) Run(ctx context.Context, globals *Globals) error {
	db, err := openStore(ctx, globals)
	if err != nil {
		return err
	}
	defer db.Close()

	users := &service.UserService{Store: db}
	if err := users.GrantRole(ctx, c.Username, c.Role); err != nil {
		return err
	}

	fmt.Printf("granted %s to %s\n", c.Role, c.Username)
	return nil
}
