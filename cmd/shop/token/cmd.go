package token

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/andrebq/shop/auth"
	"github.com/andrebq/shop/internal/cmdflags"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var secretEnvVar string
	return &cli.Command{
		Name:  "token",
		Usage: "Inspect bearer tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "verify",
				Usage: "Verify the token read from stdin and print the identity it carries",
				Flags: []cli.Flag{
					cmdflags.SecretEnvVar(&secretEnvVar),
				},
				Action: func(ctx *cli.Context) error {
					codec, err := cmdflags.Codec(secretEnvVar, auth.DefaultValidity)
					if err != nil {
						return err
					}
					sc := bufio.NewScanner(os.Stdin)
					if !sc.Scan() {
						if sc.Err() != nil {
							return sc.Err()
						}
						return errors.New("missing token from stdin")
					}
					tk := strings.TrimPrefix(strings.TrimSpace(sc.Text()), "Bearer ")
					id, err := codec.Verify(tk)
					if err != nil {
						return err
					}
					enc := json.NewEncoder(ctx.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(struct {
						Username string      `json:"username"`
						Roles    []auth.Role `json:"roles"`
					}{
						Username: id.Username,
						Roles:    id.Roles,
					})
				},
			},
		},
	}
}
