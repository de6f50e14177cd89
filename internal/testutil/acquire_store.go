package testutil

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/andrebq/shop/auth"
	"github.com/andrebq/shop/store"
	"golang.org/x/crypto/bcrypt"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

var (
	// Secret is only used by tests, never by a running server
	Secret = []byte("0123456789abcdef0123456789abcdef")

	// FastPasswords keeps bcrypt at its minimum cost so tests don't crawl
	FastPasswords = auth.Bcrypt{Cost: bcrypt.MinCost}
)

// AcquireStore opens a writeable store on a temporary directory,
// the returned func closes the store and removes the directory
func AcquireStore(ctx context.Context, t TestLog, opts ...store.Option) (*store.DB, func()) {
	dir, err := ioutil.TempDir("", "shop-tests")
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]store.Option{store.WithPasswordHasher(FastPasswords)}, opts...)
	db, err := store.Open(ctx, filepath.Join(dir, "shop.db"), true, opts...)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return db, func() {
		err := db.Close()
		if err != nil {
			t.Log("unable to close store", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// SeedUser creates an active user or aborts the test
func SeedUser(ctx context.Context, t TestLog, db *store.DB, username, password string, roles ...auth.Role) store.User {
	u, err := db.CreateUser(ctx, store.UserInput{
		Username: username,
		Password: auth.PlainText(password),
		Roles:    roles,
		Active:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// AcquireCodec returns a codec signing with Secret
func AcquireCodec(t TestLog, validity time.Duration) *auth.Codec {
	c, err := auth.NewCodec(Secret, validity)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// Token issues a token for username or aborts the test
func Token(t TestLog, c *auth.Codec, username string, roles ...auth.Role) string {
	tk, err := c.Issue(username, roles)
	if err != nil {
		t.Fatal(err)
	}
	return tk
}
