package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/andrebq/shop/cmd/shop/serve"
	"github.com/andrebq/shop/cmd/shop/token"
	"github.com/andrebq/shop/cmd/shop/users"
	"github.com/andrebq/shop/internal/logutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	var pretty bool
	app := &cli.App{
		Name:  "shop",
		Usage: "Customers, users and pictures behind bearer tokens",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "pretty-log",
				Usage:       "Write human friendly logs to stderr instead of JSON",
				EnvVars:     []string{"SHOP_PRETTY_LOG"},
				Destination: &pretty,
			},
		},
		Before: func(ctx *cli.Context) error {
			logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
			if pretty {
				logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
			}
			log.Logger = logger
			ctx.Context = logutil.WithLogger(ctx.Context, logger)
			return nil
		},
		Commands: []*cli.Command{
			serve.Cmd(),
			users.Cmd(),
			token.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
