package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andrebq/shop/auth"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

type (
	// DB keeps users, customers and pictures in a single sqlite file
	DB struct {
		db        *sql.DB
		writeable bool
		newID     IDFn
		passwords auth.PasswordHasher
	}

	IDFn func() string

	Option func(*DB)
)

// WithIDFn replaces the function used to generate new identifiers
func WithIDFn(fn IDFn) Option {
	return func(d *DB) {
		d.newID = fn
	}
}

// WithPasswordHasher replaces the hasher used before storing user passwords
func WithPasswordHasher(h auth.PasswordHasher) Option {
	return func(d *DB) {
		d.passwords = h
	}
}

func openDatabase(ctx context.Context, file string, readwrite bool) (*sql.DB, error) {
	if readwrite {
		err := os.MkdirAll(filepath.Dir(file), 0755)
		if err != nil {
			return nil, fmt.Errorf("unable to create directory to store database %v, cause %w", file, err)
		}
	}
	var connstr string
	if readwrite {
		connstr = fmt.Sprintf("file:%v?_foreign_keys=on&_journal=wal&_busy_timeout=5000&mode=rwc", file)
	} else {
		connstr = fmt.Sprintf("file:%v?_foreign_keys=on&mode=ro", file)
	}
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %w", file, err)
	}
	if readwrite {
		// sqlite allows a single writer anyway
		conn.SetMaxOpenConns(1)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping database %v, cause %w", file, err)
	}
	return conn, nil
}

// Open loads the database stored at file, when readwrite is true
// the file (and its schema) is created if needed
func Open(ctx context.Context, file string, readwrite bool, opts ...Option) (*DB, error) {
	conn, err := openDatabase(ctx, file, readwrite)
	if err != nil {
		return nil, err
	}
	d := New(conn, readwrite, opts...)
	if readwrite {
		err = d.init(ctx)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("unable to init database %v, cause %w", file, err)
		}
	}
	return d, nil
}

// New wraps an already open connection, the schema is not touched
func New(conn *sql.DB, writeable bool, opts ...Option) *DB {
	d := &DB{
		db:        conn,
		writeable: writeable,
		newID:     uuid.NewString,
		passwords: auth.Bcrypt{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *DB) Writeable() bool {
	return d.writeable
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			user_id text not null primary key,
			username text not null unique,
			password_hash text not null,
			roles text not null,
			is_active integer not null default 1
		)`,
		`create table if not exists pictures(
			picture_id text not null primary key,
			content_hash64 integer not null,
			image_base64 text not null
		)`,
		`create index if not exists idx_pictures_content_hash64
			on pictures(content_hash64)
		`,
		`create table if not exists customers(
			customer_id text not null primary key,
			name text not null,
			surname text not null,
			created_by text not null,
			last_updated_by text,
			picture_id text,
			foreign key (created_by) references users(user_id),
			foreign key (last_updated_by) references users(user_id),
			foreign key (picture_id) references pictures(picture_id)
		)`,
	} {
		_, err := d.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
