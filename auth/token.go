package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type (
	// Codec issues and verifies signed tokens.
	//
	// A Codec is immutable after NewCodec returns and
	// can be shared by any number of goroutines.
	Codec struct {
		secret   []byte
		validity time.Duration
		now      func() time.Time
		parser   *jwt.Parser
	}

	tokenClaims struct {
		Auth []Role `json:"auth"`
		jwt.RegisteredClaims
	}
)

const (
	MinSecretSize   = 32
	DefaultValidity = time.Hour
)

var (
	signingMethod = jwt.SigningMethodHS256
)

func NewCodec(secret []byte, validity time.Duration) (*Codec, error) {
	return newCodec(secret, validity, time.Now)
}

func newCodec(secret []byte, validity time.Duration, now func() time.Time) (*Codec, error) {
	if len(secret) < MinSecretSize {
		return nil, fmt.Errorf("auth: signing secret must have at least %v bytes, got %v", MinSecretSize, len(secret))
	}
	if validity <= 0 {
		return nil, fmt.Errorf("auth: token validity must be positive, got %v", validity)
	}
	c := &Codec{
		secret:   append([]byte(nil), secret...),
		validity: validity,
		now:      now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		// without strict decoding the last char of a segment
		// can change without changing the decoded bytes
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
		// tokens are rejected once now > exp, jwt alone rejects at now == exp
		jwt.WithLeeway(time.Nanosecond),
	)
	return c, nil
}

// Validity returns how long a token is accepted after being issued
func (c *Codec) Validity() time.Duration {
	return c.validity
}

// Issue returns a signed token for the given username and roles
func (c *Codec) Issue(username string, roles []Role) (string, error) {
	if len(username) == 0 {
		return "", errors.New("auth: cannot issue a token without a subject")
	}
	now := c.now()
	claims := tokenClaims{
		Auth: append([]Role{}, roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
		},
	}
	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: unable to sign token, cause %w", err)
	}
	return token, nil
}

// Verify checks the signature and expiration of token and
// returns the identity it carries.
//
// Every failure is reported as TokenInvalid.
func (c *Codec) Verify(token string) (Identity, error) {
	var claims tokenClaims
	_, err := c.parser.ParseWithClaims(token, &claims, c.key)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Identity{}, TokenInvalid{Expired: true, cause: err}
	} else if err != nil {
		return Identity{}, TokenInvalid{cause: err}
	}
	if len(claims.Subject) == 0 {
		return Identity{}, TokenInvalid{cause: errors.New("missing subject")}
	}
	for _, r := range claims.Auth {
		if _, err := ParseRole(string(r)); err != nil {
			return Identity{}, TokenInvalid{cause: err}
		}
	}
	return NewIdentity(claims.Subject, claims.Auth), nil
}

func (c *Codec) key(_ *jwt.Token) (interface{}, error) {
	return c.secret, nil
}
