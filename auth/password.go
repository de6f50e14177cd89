package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type (
	// PasswordVerifier compares a plain-text password against a stored hash
	PasswordVerifier interface {
		Verify(hash string, password []byte) (bool, error)
	}

	// PasswordHasher produces hashes that a PasswordVerifier can check
	PasswordHasher interface {
		Hash(password []byte) (string, error)
	}

	// Bcrypt implements both PasswordHasher and PasswordVerifier
	Bcrypt struct {
		Cost int
	}
)

const (
	DefaultBcryptCost = 12
)

func (b Bcrypt) Hash(password []byte) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	buf, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		return "", fmt.Errorf("auth: unable to hash password, cause %w", err)
	}
	return string(buf), nil
}

func (b Bcrypt) Verify(hash string, password []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("auth: unable to compare password hash, cause %w", err)
	}
}
