package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type (
	Picture struct {
		ID          string
		ImageBase64 string
		// Hash is the xxhash of ImageBase64, pictures never change
		// so it is safe to use as an ETag
		Hash uint64
	}
)

const (
	pictureHeaderPrefix = "data:image/"
)

// ValidPicture checks if img looks like data:image/<type>;base64,<content>
func ValidPicture(img string) error {
	parts := strings.Split(img, ",")
	if len(parts) != 2 {
		return InvalidPicture{}
	}
	if !strings.HasPrefix(parts[0], pictureHeaderPrefix) {
		return InvalidPicture{}
	}
	if len(parts[1]) == 0 {
		return InvalidPicture{}
	}
	if _, err := base64.StdEncoding.DecodeString(parts[1]); err != nil {
		return InvalidPicture{}
	}
	return nil
}

func (d *DB) StorePicture(ctx context.Context, imageBase64 string) (Picture, error) {
	if err := ValidPicture(imageBase64); err != nil {
		return Picture{}, err
	}
	p := Picture{
		ID:          d.newID(),
		ImageBase64: imageBase64,
		Hash:        xxhash.Sum64String(imageBase64),
	}
	_, err := d.db.ExecContext(ctx, `insert into pictures(picture_id, content_hash64, image_base64) values (?, ?, ?)`,
		p.ID, int64(p.Hash), p.ImageBase64)
	if err != nil {
		return Picture{}, fmt.Errorf("unable to store picture, cause %w", err)
	}
	return p, nil
}

func (d *DB) PictureByID(ctx context.Context, id string) (Picture, error) {
	var p Picture
	var hash int64
	err := d.db.QueryRowContext(ctx, `select picture_id, content_hash64, image_base64 from pictures where picture_id = ?`, id).
		Scan(&p.ID, &hash, &p.ImageBase64)
	if errors.Is(err, sql.ErrNoRows) {
		return Picture{}, PictureNotFound{ID: id}
	} else if err != nil {
		return Picture{}, fmt.Errorf("unable to load picture %v, cause %w", id, err)
	}
	p.Hash = uint64(hash)
	return p, nil
}

// CustomerPictureID returns the id of the picture attached to the customer
func (d *DB) CustomerPictureID(ctx context.Context, customerID string) (string, error) {
	var pictureID sql.NullString
	err := d.db.QueryRowContext(ctx, `select picture_id from customers where customer_id = ?`, customerID).Scan(&pictureID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", CustomerNotFound{ID: customerID}
	} else if err != nil {
		return "", fmt.Errorf("unable to load customer %v, cause %w", customerID, err)
	}
	if !pictureID.Valid || len(pictureID.String) == 0 {
		return "", CustomerHasNoPicture{ID: customerID}
	}
	return pictureID.String, nil
}

func (d *DB) CustomerPicture(ctx context.Context, customerID string) (Picture, error) {
	id, err := d.CustomerPictureID(ctx, customerID)
	if err != nil {
		return Picture{}, err
	}
	return d.PictureByID(ctx, id)
}
