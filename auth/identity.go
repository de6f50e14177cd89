package auth

import (
	"context"
	"strings"
)

type (
	// Role is an authorization label, the set of roles is closed (see ParseRole)
	Role string

	// Identity is the verified username and roles of the caller
	Identity struct {
		Username string
		Roles    []Role
	}

	identityKey byte
)

const (
	RoleUser  = Role("USER")
	RoleAdmin = Role("ADMIN")
)

var (
	currentIdentity = identityKey(1)
)

// ParseRole returns the Role named by str, str must match exactly
func ParseRole(str string) (Role, error) {
	switch Role(str) {
	case RoleUser, RoleAdmin:
		return Role(str), nil
	}
	return "", UnknownRole{Name: str}
}

// ParseRoles parses a list of role names, the output keeps the
// input order and drops duplicates
func ParseRoles(names []string) ([]Role, error) {
	out := make([]Role, 0, len(names))
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return nil, err
		}
		if !hasRole(out, r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// JoinRoles encodes roles as a single string (eg.: ADMIN|USER)
func JoinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, "|")
}

// SplitRoles is the inverse of JoinRoles
func SplitRoles(str string) ([]Role, error) {
	if len(str) == 0 {
		return nil, nil
	}
	return ParseRoles(strings.Split(str, "|"))
}

func NewIdentity(username string, roles []Role) Identity {
	return Identity{
		Username: username,
		Roles:    append([]Role(nil), roles...),
	}
}

// Has returns true if the identity holds the given role
func (i Identity) Has(role Role) bool {
	return hasRole(i.Roles, role)
}

// WithIdentity returns a context that carries id, this should only be called
// after the identity was verified
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, currentIdentity, id)
}

// IdentityFrom returns the identity attached to ctx
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(currentIdentity).(Identity)
	return id, ok
}

func hasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
