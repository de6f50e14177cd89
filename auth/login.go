package auth

import (
	"context"
	"fmt"
)

type (
	// PlainText holds secrets provided by users, call Zero as soon
	// as it is not needed anymore
	PlainText []byte

	// CredentialRecord is the part of a user account needed to authenticate it
	CredentialRecord struct {
		Username     string
		PasswordHash string
		Roles        []Role
		Active       bool
	}

	// CredentialStore is implemented by whoever owns user accounts.
	//
	// The bool result is false when no record matches, errors are
	// reserved for failures of the store itself.
	CredentialStore interface {
		FindByUsername(ctx context.Context, username string) (CredentialRecord, bool, error)
		FindActiveByUsername(ctx context.Context, username string) (CredentialRecord, bool, error)
	}

	// Authenticator exchanges a username/password pair for a token
	Authenticator struct {
		users     CredentialStore
		passwords PasswordVerifier
		codec     *Codec
		decoy     string
	}
)

func (p PlainText) Zero() {
	for i := range p {
		p[i] = 0
	}
}

func NewAuthenticator(users CredentialStore, passwords PasswordVerifier, codec *Codec) *Authenticator {
	a := &Authenticator{
		users:     users,
		passwords: passwords,
		codec:     codec,
	}
	if h, ok := passwords.(PasswordHasher); ok {
		// compared against when the user does not exist, so both
		// failure paths take roughly the same time
		a.decoy, _ = h.Hash(PlainText("not-a-real-password"))
	}
	return a
}

// Login returns a token for the active user identified by username.
//
// An unknown username and a wrong password return the same InvalidCredentials
// error. Any other error comes from the credential store and
// does not say anything about the credentials.
func (a *Authenticator) Login(ctx context.Context, username string, password PlainText) (string, error) {
	record, found, err := a.users.FindActiveByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("auth: unable to lookup credentials, cause %w", err)
	}
	if !found {
		if len(a.decoy) > 0 {
			_, _ = a.passwords.Verify(a.decoy, password)
		}
		return "", InvalidCredentials{}
	}
	match, err := a.passwords.Verify(record.PasswordHash, password)
	if err != nil || !match {
		return "", InvalidCredentials{}
	}
	return a.codec.Issue(record.Username, record.Roles)
}
