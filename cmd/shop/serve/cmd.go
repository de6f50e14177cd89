package serve

import (
	"time"

	"github.com/andrebq/shop/auth"
	authapi "github.com/andrebq/shop/auth/api"
	"github.com/andrebq/shop/internal/cmdflags"
	"github.com/andrebq/shop/internal/httpserver"
	"github.com/andrebq/shop/internal/logutil"
	"github.com/andrebq/shop/store"
	"github.com/andrebq/shop/store/api"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:8080"
	var database string
	var secretEnvVar string
	var validity time.Duration
	pictureTTL := 10 * time.Minute
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the http api",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind the http server",
				EnvVars:     []string{"SHOP_BIND"},
				Value:       bindAddr,
				Destination: &bindAddr,
			},
			&cli.DurationFlag{
				Name:        "picture-cache-ttl",
				Usage:       "How long pictures are kept in memory after being served",
				EnvVars:     []string{"SHOP_PICTURE_CACHE_TTL"},
				Value:       pictureTTL,
				Destination: &pictureTTL,
			},
			cmdflags.Database(&database),
			cmdflags.SecretEnvVar(&secretEnvVar),
			cmdflags.TokenValidity(&validity),
		},
		Action: func(ctx *cli.Context) error {
			log := logutil.GetOrDefault(ctx.Context)
			codec, err := cmdflags.Codec(secretEnvVar, validity)
			if err != nil {
				return err
			}
			db, err := store.Open(ctx.Context, database, true)
			if err != nil {
				return err
			}
			defer db.Close()
			pictures, err := store.NewPictureCache(db, pictureTTL)
			if err != nil {
				return err
			}
			defer pictures.Close()

			realm := authapi.NewRealm(codec, auth.NewAuthenticator(db, auth.Bcrypt{}, codec))
			log.Info().Str("database", database).Dur("token.validity", codec.Validity()).Msg("Starting shop api")
			return httpserver.Serve(ctx.Context, bindAddr, api.AsHandler(db, pictures, realm))
		},
	}
}
