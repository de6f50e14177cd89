package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type (
	memCredentials struct {
		records map[string]CredentialRecord
		err     error
		calls   int
	}
)

func (m *memCredentials) FindByUsername(ctx context.Context, username string) (CredentialRecord, bool, error) {
	m.calls++
	if m.err != nil {
		return CredentialRecord{}, false, m.err
	}
	r, ok := m.records[username]
	return r, ok, nil
}

func (m *memCredentials) FindActiveByUsername(ctx context.Context, username string) (CredentialRecord, bool, error) {
	r, ok, err := m.FindByUsername(ctx, username)
	if err != nil || !ok || !r.Active {
		return CredentialRecord{}, false, err
	}
	return r, true, nil
}

func testAuthenticator(t *testing.T) (*Authenticator, *memCredentials, *Codec) {
	passwords := Bcrypt{Cost: bcrypt.MinCost}
	hash := func(p string) string {
		h, err := passwords.Hash(PlainText(p))
		if err != nil {
			t.Fatal(err)
		}
		return h
	}
	store := &memCredentials{records: map[string]CredentialRecord{
		"existingUser": {Username: "existingUser", PasswordHash: hash("correctPassword"), Roles: []Role{RoleUser}, Active: true},
		"admin":        {Username: "admin", PasswordHash: hash("admin-password"), Roles: []Role{RoleAdmin, RoleUser}, Active: true},
		"retired":      {Username: "retired", PasswordHash: hash("retired-password"), Roles: []Role{RoleUser}, Active: false},
	}}
	codec, _ := testCodec(t)
	return NewAuthenticator(store, passwords, codec), store, codec
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	a, _, codec := testAuthenticator(t)
	token, err := a.Login(ctx, "existingUser", PlainText("correctPassword"))
	require.NoError(t, err)
	id, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "existingUser", id.Username)
	require.Equal(t, []Role{RoleUser}, id.Roles)

	token, err = a.Login(ctx, "admin", PlainText("admin-password"))
	require.NoError(t, err)
	id, err = codec.Verify(token)
	require.NoError(t, err)
	require.True(t, id.Has(RoleAdmin))
}

func TestLoginDoesNotLeakWhichFieldIsWrong(t *testing.T) {
	ctx := context.Background()
	a, _, _ := testAuthenticator(t)
	_, wrongPassword := a.Login(ctx, "existingUser", PlainText("wrongPassword"))
	_, noSuchUser := a.Login(ctx, "noSuchUser", PlainText("anything"))
	_, inactive := a.Login(ctx, "retired", PlainText("retired-password"))

	require.Equal(t, InvalidCredentials{}, wrongPassword)
	require.Equal(t, wrongPassword, noSuchUser)
	require.Equal(t, wrongPassword, inactive)
	require.Equal(t, wrongPassword.Error(), noSuchUser.Error())
}

func TestLoginStoreFailure(t *testing.T) {
	ctx := context.Background()
	a, store, _ := testAuthenticator(t)
	store.err = errors.New("disk on fire")
	_, err := a.Login(ctx, "existingUser", PlainText("correctPassword"))
	require.Error(t, err)
	require.False(t, errors.Is(err, InvalidCredentials{}), "store failures must not look like bad credentials")
	require.Equal(t, 1, store.calls, "failed lookups should not be retried")
}

func TestBcrypt(t *testing.T) {
	b := Bcrypt{Cost: bcrypt.MinCost}
	hash, err := b.Hash(PlainText("secret"))
	require.NoError(t, err)
	ok, err := b.Verify(hash, PlainText("secret"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = b.Verify(hash, PlainText("not-secret"))
	require.NoError(t, err)
	require.False(t, ok)
	_, err = b.Verify("not-a-hash", PlainText("secret"))
	require.Error(t, err)
}

func TestPlainTextZero(t *testing.T) {
	p := PlainText("secret")
	p.Zero()
	require.Equal(t, PlainText{0, 0, 0, 0, 0, 0}, p)
}
