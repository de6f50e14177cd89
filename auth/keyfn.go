package auth

import (
	"fmt"
	"os"
)

const (
	SecretEnvVar = "SHOP_JWT_SECRET"
)

// SecretFromEnv reads the token signing secret from the environment variable
// varname and removes it from the environment right after.
//
// getfn/setfn default to os.Getenv/os.Setenv
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) ([]byte, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	if err := setfn(varname, ""); err != nil {
		return nil, fmt.Errorf("auth: unable to clear %v from environment, cause %w", varname, err)
	}
	if len(val) == 0 {
		return nil, fmt.Errorf("auth: environment variable %v is empty", varname)
	} else if len(val) < MinSecretSize {
		return nil, fmt.Errorf("auth: secret from %v too short got %v expecting at least %v bytes", varname, len(val), MinSecretSize)
	}
	return []byte(val), nil
}
