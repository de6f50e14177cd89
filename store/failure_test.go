package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andrebq/shop/auth"
	"github.com/andrebq/shop/internal/testutil"
	"github.com/andrebq/shop/store"
	"github.com/stretchr/testify/require"
)

func TestCredentialLookupFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer conn.Close()
	db := store.New(conn, false)

	ioErr := errors.New("disk I/O error")
	mock.ExpectQuery("select username, password_hash, roles, is_active from users where username = \\? and is_active = 1").
		WithArgs("bob").
		WillReturnError(ioErr)

	authenticator := auth.NewAuthenticator(db, testutil.FastPasswords, testutil.AcquireCodec(t, time.Minute))
	_, err = authenticator.Login(context.Background(), "bob", auth.PlainText("bob-pwd"))
	require.ErrorIs(t, err, ioErr)
	require.False(t, errors.Is(err, auth.InvalidCredentials{}), "store failures must not look like bad credentials")
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestCredentialLookupInvalidRoles(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer conn.Close()
	db := store.New(conn, false)

	mock.ExpectQuery("select username, password_hash, roles, is_active from users where username = \\?").
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "roles", "is_active"}).
			AddRow("bob", "hash", "ROLE_USER", true))

	_, _, err = db.FindByUsername(context.Background(), "bob")
	require.ErrorIs(t, err, auth.UnknownRole{Name: "ROLE_USER"})
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestDeleteCustomerFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer conn.Close()
	db := store.New(conn, true)

	mock.ExpectExec("delete from customers where customer_id = \\?").
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("delete from customers where customer_id = \\?").
		WithArgs("c2").
		WillReturnError(context.DeadlineExceeded)

	require.ErrorIs(t, db.DeleteCustomer(context.Background(), "c1"), store.CustomerNotFound{ID: "c1"})
	err = db.DeleteCustomer(context.Background(), "c2")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, errors.As(err, &store.CustomerNotFound{}))
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
