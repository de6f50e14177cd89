package cmdflags

import (
	"time"

	"github.com/andrebq/shop/auth"
	"github.com/urfave/cli/v2"
)

func Database(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "shop.db"
	}
	return &cli.StringFlag{
		Name:        "database",
		Aliases:     []string{"db"},
		Usage:       "Path to the sqlite database file",
		EnvVars:     []string{"SHOP_DATABASE"},
		Destination: out,
		Value:       *out,
	}
}

func SecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = auth.SecretEnvVar
	}
	return &cli.StringFlag{
		Name:        "secret-envvar-name",
		Usage:       "Name of the environment variable that holds the token signing secret. The secret itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}

func TokenValidity(out *time.Duration) cli.Flag {
	if *out == 0 {
		*out = auth.DefaultValidity
	}
	return &cli.DurationFlag{
		Name:        "token-validity",
		Usage:       "How long issued tokens are accepted",
		EnvVars:     []string{"SHOP_TOKEN_VALIDITY"},
		Value:       *out,
		Destination: out,
	}
}

// Codec reads the signing secret from the variable named by envvar
// and builds a codec with it
func Codec(envvar string, validity time.Duration) (*auth.Codec, error) {
	secret, err := auth.SecretFromEnv(envvar, nil, nil)
	if err != nil {
		return nil, err
	}
	return auth.NewCodec(secret, validity)
}
