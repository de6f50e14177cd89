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
	Customer struct {
		ID            string
		Name          string
		Surname       string
		CreatedBy     User
		LastUpdatedBy *User
		// PictureID is empty when the customer has no picture
		PictureID string
	}

	CustomerInput struct {
		Name      string
		Surname   string
		PictureID string
	}
)

const (
	customerQuery = `select c.customer_id, c.name, c.surname, c.picture_id,
		cb.user_id, cb.username, cb.roles, cb.is_active,
		ub.user_id, ub.username, ub.roles, ub.is_active
	from customers c
		inner join users cb on cb.user_id = c.created_by
		left join users ub on ub.user_id = c.last_updated_by`
)

func (c CustomerInput) validate() (CustomerInput, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Surname = strings.TrimSpace(c.Surname)
	c.PictureID = strings.TrimSpace(c.PictureID)
	if len(c.Name) == 0 {
		return c, InvalidInput{Field: "name", Reason: "is required"}
	}
	if len(c.Surname) == 0 {
		return c, InvalidInput{Field: "surname", Reason: "is required"}
	}
	return c, nil
}

// CreateCustomer stores a new customer created by the active user called requester
func (d *DB) CreateCustomer(ctx context.Context, in CustomerInput, requester string) (Customer, error) {
	in, err := in.validate()
	if err != nil {
		return Customer{}, err
	}
	author, err := d.ActiveUserByUsername(ctx, requester)
	if err != nil {
		return Customer{}, err
	}
	if err := d.checkPicture(ctx, in.PictureID); err != nil {
		return Customer{}, err
	}
	id := d.newID()
	_, err = d.db.ExecContext(ctx, `insert into customers(customer_id, name, surname, created_by, picture_id) values (?, ?, ?, ?, ?)`,
		id, in.Name, in.Surname, author.ID, nullable(in.PictureID))
	if err != nil {
		return Customer{}, fmt.Errorf("unable to create customer, cause %w", err)
	}
	return d.CustomerByID(ctx, id)
}

// UpdateCustomer replaces name, surname and picture of the customer,
// an empty PictureID keeps the current picture
func (d *DB) UpdateCustomer(ctx context.Context, id string, in CustomerInput, requester string) (Customer, error) {
	in, err := in.validate()
	if err != nil {
		return Customer{}, err
	}
	current, err := d.CustomerByID(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	author, err := d.ActiveUserByUsername(ctx, requester)
	if err != nil {
		return Customer{}, err
	}
	pictureID := current.PictureID
	if len(in.PictureID) > 0 {
		if err := d.checkPicture(ctx, in.PictureID); err != nil {
			return Customer{}, err
		}
		pictureID = in.PictureID
	}
	_, err = d.db.ExecContext(ctx, `update customers set name = ?, surname = ?, last_updated_by = ?, picture_id = ? where customer_id = ?`,
		in.Name, in.Surname, author.ID, nullable(pictureID), id)
	if err != nil {
		return Customer{}, fmt.Errorf("unable to update customer %v, cause %w", id, err)
	}
	return d.CustomerByID(ctx, id)
}

func (d *DB) CustomerByID(ctx context.Context, id string) (Customer, error) {
	c, err := scanCustomer(d.db.QueryRowContext(ctx, customerQuery+` where c.customer_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, CustomerNotFound{ID: id}
	} else if err != nil {
		return Customer{}, fmt.Errorf("unable to load customer %v, cause %w", id, err)
	}
	return c, nil
}

func (d *DB) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := d.db.QueryContext(ctx, customerQuery+` order by c.surname asc, c.name asc, c.customer_id asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list customers, cause %w", err)
	}
	defer rows.Close()
	out := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan customer, cause %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) DeleteCustomer(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `delete from customers where customer_id = ?`, id)
	if err != nil {
		return fmt.Errorf("unable to delete customer %v, cause %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return CustomerNotFound{ID: id}
	}
	return nil
}

func (d *DB) checkPicture(ctx context.Context, id string) error {
	if len(id) == 0 {
		return nil
	}
	var found int
	err := d.db.QueryRowContext(ctx, `select count(*) from pictures where picture_id = ?`, id).Scan(&found)
	if err != nil {
		return fmt.Errorf("unable to check picture %v, cause %w", id, err)
	}
	if found == 0 {
		return PictureNotFound{ID: id}
	}
	return nil
}

func scanCustomer(row rowScanner) (Customer, error) {
	var c Customer
	var pictureID sql.NullString
	var createdRoles string
	var updatedID, updatedName, updatedRoles sql.NullString
	var updatedActive sql.NullBool
	err := row.Scan(&c.ID, &c.Name, &c.Surname, &pictureID,
		&c.CreatedBy.ID, &c.CreatedBy.Username, &createdRoles, &c.CreatedBy.Active,
		&updatedID, &updatedName, &updatedRoles, &updatedActive)
	if err != nil {
		return Customer{}, err
	}
	c.PictureID = pictureID.String
	c.CreatedBy.Roles, err = auth.SplitRoles(createdRoles)
	if err != nil {
		return Customer{}, err
	}
	if updatedID.Valid {
		u := User{
			ID:       updatedID.String,
			Username: updatedName.String,
			Active:   updatedActive.Bool,
		}
		u.Roles, err = auth.SplitRoles(updatedRoles.String)
		if err != nil {
			return Customer{}, err
		}
		c.LastUpdatedBy = &u
	}
	return c, nil
}

func nullable(str string) sql.NullString {
	return sql.NullString{String: str, Valid: len(str) > 0}
}
