package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andrebq/shop/auth"
	"github.com/andrebq/shop/internal/cmdflags"
	"github.com/andrebq/shop/internal/logutil"
	"github.com/andrebq/shop/store"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage user accounts directly on the database",
		Subcommands: []*cli.Command{
			createCmd(),
		},
	}
}

func createCmd() *cli.Command {
	var database string
	var username string
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new user (password is read from stdin)",
		Flags: []cli.Flag{
			cmdflags.Database(&database),
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to create",
				Destination: &username,
				Required:    true,
			},
			&cli.StringSliceFlag{
				Name:    "role",
				Aliases: []string{"r"},
				Usage:   fmt.Sprintf("Role given to the user (%v or %v), can be repeated", auth.RoleUser, auth.RoleAdmin),
				Value:   cli.NewStringSlice(string(auth.RoleUser)),
			},
		},
		Action: func(ctx *cli.Context) error {
			return createUser(ctx.Context, database, username, ctx.StringSlice("role"), ctx.App.Reader)
		},
	}
}

func createUser(ctx context.Context, database, username string, roles []string, stdin io.Reader) error {
	sc := bufio.NewScanner(stdin)
	if !sc.Scan() {
		if sc.Err() != nil {
			return sc.Err()
		}
		return errors.New("missing password from stdin")
	}
	password := auth.PlainText(strings.TrimSpace(sc.Text()))
	defer password.Zero()
	if len(password) == 0 {
		return errors.New("missing password from stdin")
	}
	parsed, err := auth.ParseRoles(roles)
	if err != nil {
		return err
	}
	db, err := store.Open(ctx, database, true)
	if err != nil {
		return err
	}
	defer db.Close()
	u, err := db.CreateUser(ctx, store.UserInput{
		Username: username,
		Password: password,
		Roles:    parsed,
		Active:   true,
	})
	if err != nil {
		return err
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("user.id", u.ID).Str("username", u.Username).Str("roles", auth.JoinRoles(u.Roles)).Msg("User created")
	return nil
}
