package store

import "fmt"

type (
	UserNotFound struct {
		ID       string
		Username string
	}

	UsernameInUse struct {
		Username string
	}

	CustomerNotFound struct {
		ID string
	}

	CustomerHasNoPicture struct {
		ID string
	}

	PictureNotFound struct {
		ID string
	}

	InvalidPicture struct{}

	// InvalidInput is returned when a required field is missing or malformed
	InvalidInput struct {
		Field  string
		Reason string
	}
)

func (u UserNotFound) Error() string {
	if len(u.Username) > 0 {
		return fmt.Sprintf("user %v not found", u.Username)
	}
	return fmt.Sprintf("user with id %v not found", u.ID)
}

func (u UsernameInUse) Error() string {
	return "username already in use"
}

func (c CustomerNotFound) Error() string {
	return fmt.Sprintf("customer with id %v not found", c.ID)
}

func (c CustomerHasNoPicture) Error() string {
	return fmt.Sprintf("customer with id %v has no picture attached", c.ID)
}

func (p PictureNotFound) Error() string {
	return fmt.Sprintf("picture with id %v not found", p.ID)
}

func (InvalidPicture) Error() string {
	return "invalid base64 image, expecting data:image/<type>;base64,<content>"
}

func (i InvalidInput) Error() string {
	return fmt.Sprintf("field %v %v", i.Field, i.Reason)
}
