package api

import (
	"errors"
	"fmt"

	"github.com/andrebq/shop/auth"
	"github.com/andrebq/shop/store"
)

type (
	userDTO struct {
		UserID   string      `json:"userId"`
		Username string      `json:"username"`
		Roles    []auth.Role `json:"roles"`
		IsActive bool        `json:"isActive"`
	}

	customerDTO struct {
		CustomerID    string   `json:"customerId"`
		Name          string   `json:"name"`
		Surname       string   `json:"surname"`
		CreatedBy     userDTO  `json:"createdBy"`
		LastUpdatedBy *userDTO `json:"lastUpdatedBy"`
		PictureURI    *string  `json:"pictureUri"`
	}

	pictureDTO struct {
		PictureID   string `json:"pictureId"`
		ImageBase64 string `json:"imageBase64"`
	}

	listDTO struct {
		Items interface{} `json:"items"`
	}

	createUserRequest struct {
		Username string   `json:"username"`
		Password string   `json:"password"`
		Roles    []string `json:"roles"`
	}

	updateUserRequest struct {
		Username string   `json:"username"`
		Password string   `json:"password"`
		Roles    []string `json:"roles"`
		IsActive *bool    `json:"isActive"`
	}

	customerRequest struct {
		Name      string `json:"name"`
		Surname   string `json:"surname"`
		PictureID string `json:"pictureId"`
	}

	pictureRequest struct {
		ImageBase64 string `json:"imageBase64"`
	}
)

func toUser(u store.User) userDTO {
	roles := u.Roles
	if roles == nil {
		roles = []auth.Role{}
	}
	return userDTO{
		UserID:   u.ID,
		Username: u.Username,
		Roles:    roles,
		IsActive: u.Active,
	}
}

func toUsers(users []store.User) []userDTO {
	out := make([]userDTO, len(users))
	for i, u := range users {
		out[i] = toUser(u)
	}
	return out
}

func toCustomer(c store.Customer) customerDTO {
	out := customerDTO{
		CustomerID: c.ID,
		Name:       c.Name,
		Surname:    c.Surname,
		CreatedBy:  toUser(c.CreatedBy),
	}
	if c.LastUpdatedBy != nil {
		u := toUser(*c.LastUpdatedBy)
		out.LastUpdatedBy = &u
	}
	if len(c.PictureID) > 0 {
		uri := pictureURI(c.ID)
		out.PictureURI = &uri
	}
	return out
}

func toCustomers(customers []store.Customer) []customerDTO {
	out := make([]customerDTO, len(customers))
	for i, c := range customers {
		out[i] = toCustomer(c)
	}
	return out
}

func toPicture(p store.Picture) pictureDTO {
	return pictureDTO{
		PictureID:   p.ID,
		ImageBase64: p.ImageBase64,
	}
}

func pictureURI(customerID string) string {
	return fmt.Sprintf("/customers/%v/picture", customerID)
}

func etag(p store.Picture) string {
	return fmt.Sprintf(`"%016x"`, p.Hash)
}

func (c customerRequest) input() store.CustomerInput {
	return store.CustomerInput{
		Name:      c.Name,
		Surname:   c.Surname,
		PictureID: c.PictureID,
	}
}

func (c createUserRequest) input() (store.UserInput, error) {
	roles, err := parseRoles(c.Roles)
	if err != nil {
		return store.UserInput{}, err
	}
	return store.UserInput{
		Username: c.Username,
		Password: auth.PlainText(c.Password),
		Roles:    roles,
		Active:   true,
	}, nil
}

func (u updateUserRequest) input() (store.UserInput, error) {
	roles, err := parseRoles(u.Roles)
	if err != nil {
		return store.UserInput{}, err
	}
	active := true
	if u.IsActive != nil {
		active = *u.IsActive
	}
	in := store.UserInput{
		Username: u.Username,
		Roles:    roles,
		Active:   active,
	}
	if len(u.Password) > 0 {
		in.Password = auth.PlainText(u.Password)
	}
	return in, nil
}

// parseRoles reports unknown roles as invalid input, UnknownRole errors
// coming from the database are server faults
func parseRoles(names []string) ([]auth.Role, error) {
	roles, err := auth.ParseRoles(names)
	var unknown auth.UnknownRole
	if errors.As(err, &unknown) {
		return nil, store.InvalidInput{Field: "roles", Reason: fmt.Sprintf("contains unknown role %q", unknown.Name)}
	} else if err != nil {
		return nil, err
	}
	return roles, nil
}
