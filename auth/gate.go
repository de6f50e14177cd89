package auth

import (
	"context"
	"net/http"
	"regexp"
)

type (
	// TokenVerifier is the part of Codec needed to authenticate requests
	TokenVerifier interface {
		Verify(token string) (Identity, error)
	}
)

var (
	bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)
)

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, bool) {
	groups := bearerTokenRE.FindStringSubmatch(header)
	if len(groups) == 0 {
		return "", false
	}
	return groups[1], true
}

// AuthenticateRequest returns the identity carried by the bearer token of r.
//
// Requests without a bearer token are not an error, they just
// don't have an identity (found is false).
func AuthenticateRequest(tokens TokenVerifier, r *http.Request) (id Identity, found bool, err error) {
	tk, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return Identity{}, false, nil
	}
	id, err = tokens.Verify(tk)
	if err != nil {
		return Identity{}, false, err
	}
	return id, true, nil
}

// Authorize checks if id (when present) holds role
func Authorize(id Identity, present bool, role Role) error {
	if !present {
		return Unauthenticated{}
	}
	if !id.Has(role) {
		return Forbidden{Role: role}
	}
	return nil
}

// Require checks the identity attached to ctx against role
func Require(ctx context.Context, role Role) (Identity, error) {
	id, ok := IdentityFrom(ctx)
	if err := Authorize(id, ok, role); err != nil {
		return Identity{}, err
	}
	return id, nil
}
