package auth

import "fmt"

type (
	// InvalidCredentials is returned by Login regardless of which
	// part of the username/password pair is wrong
	InvalidCredentials struct{}

	// TokenInvalid is returned when a token cannot be trusted,
	// either because it was tampered with, is malformed or expired.
	TokenInvalid struct {
		Expired bool
		cause   error
	}

	// Unauthenticated means an operation requires an identity but
	// none was established for the request
	Unauthenticated struct{}

	// Forbidden means the caller is known but lacks the required role
	Forbidden struct {
		Role Role
	}

	UnknownRole struct {
		Name string
	}
)

func (InvalidCredentials) Error() string {
	return "invalid username/password provided"
}

func (t TokenInvalid) Error() string {
	if t.Expired {
		return "expired or invalid token: token expired"
	}
	if t.cause != nil {
		return fmt.Sprintf("expired or invalid token: %v", t.cause)
	}
	return "expired or invalid token"
}

func (t TokenInvalid) Unwrap() error {
	return t.cause
}

// Is makes errors.Is(err, TokenInvalid{}) match any TokenInvalid error
func (t TokenInvalid) Is(target error) bool {
	_, ok := target.(TokenInvalid)
	return ok
}

func (Unauthenticated) Error() string {
	return "authentication required"
}

func (f Forbidden) Error() string {
	return fmt.Sprintf("role %v required", f.Role)
}

func (u UnknownRole) Error() string {
	return fmt.Sprintf("role %q is not valid", u.Name)
}
