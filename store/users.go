package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andrebq/shop/auth"
)

type (
	User struct {
		ID       string
		Username string
		Roles    []auth.Role
		Active   bool
	}

	// UserInput carries the fields accepted when creating or updating users.
	//
	// An empty Password on update keeps the current one.
	UserInput struct {
		Username string
		Password auth.PlainText
		Roles    []auth.Role
		Active   bool
	}

	rowScanner interface {
		Scan(...interface{}) error
	}
)

const (
	userColumns = `user_id, username, roles, is_active`
)

func (d *DB) CreateUser(ctx context.Context, in UserInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	if len(username) == 0 {
		return User{}, InvalidInput{Field: "username", Reason: "is required"}
	}
	if len(in.Password) == 0 {
		return User{}, InvalidInput{Field: "password", Reason: "is required"}
	}
	_, found, err := d.FindByUsername(ctx, username)
	if err != nil {
		return User{}, err
	} else if found {
		return User{}, UsernameInUse{Username: username}
	}
	hash, err := d.passwords.Hash(in.Password)
	if err != nil {
		return User{}, err
	}
	id := d.newID()
	_, err = d.db.ExecContext(ctx, `insert into users(user_id, username, password_hash, roles, is_active) values (?, ?, ?, ?, ?)`,
		id, username, hash, auth.JoinRoles(in.Roles), in.Active)
	if isUniqueViolation(err) {
		return User{}, UsernameInUse{Username: username}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to create user %v, cause %w", username, err)
	}
	return d.UserByID(ctx, id)
}

func (d *DB) UserByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(d.db.QueryRowContext(ctx, `select `+userColumns+` from users where user_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{ID: id}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to load user %v, cause %w", id, err)
	}
	return u, nil
}

// ActiveUserByUsername returns the active account called username
func (d *DB) ActiveUserByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(d.db.QueryRowContext(ctx, `select `+userColumns+` from users where username = ? and is_active = 1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{Username: username}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to load user %v, cause %w", username, err)
	}
	return u, nil
}

func (d *DB) ListActiveUsers(ctx context.Context) ([]User, error) {
	rows, err := d.db.QueryContext(ctx, `select `+userColumns+` from users where is_active = 1 order by username asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list users, cause %w", err)
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan user, cause %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DB) UpdateUser(ctx context.Context, id string, in UserInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	if len(username) == 0 {
		return User{}, InvalidInput{Field: "username", Reason: "is required"}
	}
	current, err := d.UserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if current.Username != username {
		_, found, err := d.FindByUsername(ctx, username)
		if err != nil {
			return User{}, err
		} else if found {
			return User{}, UsernameInUse{Username: username}
		}
	}
	if len(in.Password) > 0 {
		var hash string
		hash, err = d.passwords.Hash(in.Password)
		if err != nil {
			return User{}, err
		}
		_, err = d.db.ExecContext(ctx, `update users set username = ?, password_hash = ?, roles = ?, is_active = ? where user_id = ?`,
			username, hash, auth.JoinRoles(in.Roles), in.Active, id)
	} else {
		_, err = d.db.ExecContext(ctx, `update users set username = ?, roles = ?, is_active = ? where user_id = ?`,
			username, auth.JoinRoles(in.Roles), in.Active, id)
	}
	if isUniqueViolation(err) {
		return User{}, UsernameInUse{Username: username}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to update user %v, cause %w", id, err)
	}
	return d.UserByID(ctx, id)
}

// MarkInactive disables the user, inactive users cannot login
// but are kept around since customers reference them
func (d *DB) MarkInactive(ctx context.Context, id string) (User, error) {
	res, err := d.db.ExecContext(ctx, `update users set is_active = 0 where user_id = ?`, id)
	if err != nil {
		return User{}, fmt.Errorf("unable to deactivate user %v, cause %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, UserNotFound{ID: id}
	}
	return d.UserByID(ctx, id)
}

// FindByUsername implements auth.CredentialStore
func (d *DB) FindByUsername(ctx context.Context, username string) (auth.CredentialRecord, bool, error) {
	return d.findCredentials(ctx, `select username, password_hash, roles, is_active from users where username = ?`, username)
}

// FindActiveByUsername implements auth.CredentialStore
func (d *DB) FindActiveByUsername(ctx context.Context, username string) (auth.CredentialRecord, bool, error) {
	return d.findCredentials(ctx, `select username, password_hash, roles, is_active from users where username = ? and is_active = 1`, username)
}

func (d *DB) findCredentials(ctx context.Context, query string, username string) (auth.CredentialRecord, bool, error) {
	var rec auth.CredentialRecord
	var roles string
	err := d.db.QueryRowContext(ctx, query, username).Scan(&rec.Username, &rec.PasswordHash, &roles, &rec.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.CredentialRecord{}, false, nil
	} else if err != nil {
		return auth.CredentialRecord{}, false, fmt.Errorf("unable to lookup credentials, cause %w", err)
	}
	rec.Roles, err = auth.SplitRoles(roles)
	if err != nil {
		return auth.CredentialRecord{}, false, fmt.Errorf("user %v has invalid roles, cause %w", username, err)
	}
	return rec, true, nil
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var roles string
	err := row.Scan(&u.ID, &u.Username, &roles, &u.Active)
	if err != nil {
		return User{}, err
	}
	u.Roles, err = auth.SplitRoles(roles)
	if err != nil {
		return User{}, err
	}
	return u, nil
}
