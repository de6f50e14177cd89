package users

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrebq/shop/auth"
	"github.com/andrebq/shop/store"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testApp(stdin string) *cli.App {
	return &cli.App{
		Name:     "shop",
		Reader:   strings.NewReader(stdin),
		Writer:   ioutil.Discard,
		Commands: []*cli.Command{Cmd()},
	}
}

func TestHelpDoesNotTouchDatabase(t *testing.T) {
	dir, err := ioutil.TempDir("", "shop-cmd-tests")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	dbfile := filepath.Join(dir, "shop.db")
	t.Setenv("SHOP_DATABASE", dbfile)

	require.NoError(t, testApp("").RunContext(context.Background(), []string{"shop", "users", "--help"}))
	require.NoError(t, testApp("").RunContext(context.Background(), []string{"shop", "users", "create", "--help"}))
	_, err = os.Stat(dbfile)
	require.True(t, os.IsNotExist(err), "help should not create the database")
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	dir, err := ioutil.TempDir("", "shop-cmd-tests")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	dbfile := filepath.Join(dir, "shop.db")

	err = testApp("").RunContext(ctx, []string{"shop", "users", "create", "--database", dbfile, "-u", "root", "-r", "ADMIN"})
	require.Error(t, err, "password is required")

	err = testApp("root-pwd\n").RunContext(ctx, []string{"shop", "users", "create", "--database", dbfile, "-u", "root", "-r", "ROOT"})
	require.ErrorIs(t, err, auth.UnknownRole{Name: "ROOT"})

	err = testApp("root-pwd\n").RunContext(ctx, []string{"shop", "users", "create", "--database", dbfile, "-u", "root", "-r", "ADMIN"})
	require.NoError(t, err)

	db, err := store.Open(ctx, dbfile, false)
	require.NoError(t, err)
	defer db.Close()
	rec, found, err := db.FindActiveByUsername(ctx, "root")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []auth.Role{auth.RoleAdmin}, rec.Roles)
	ok, err := auth.Bcrypt{}.Verify(rec.PasswordHash, auth.PlainText("root-pwd"))
	require.NoError(t, err)
	require.True(t, ok)
}
