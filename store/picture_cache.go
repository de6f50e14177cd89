package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	// PictureCache keeps recently served pictures in memory,
	// pictures are never updated so entries only leave the cache once they expire
	PictureCache struct {
		db    *DB
		cache *bigcache.BigCache
	}
)

func NewPictureCache(db *DB, ttl time.Duration) (*PictureCache, error) {
	cache, err := bigcache.NewBigCache(bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, fmt.Errorf("unable to create picture cache, cause %w", err)
	}
	return &PictureCache{
		db:    db,
		cache: cache,
	}, nil
}

func (p *PictureCache) Picture(ctx context.Context, id string) (Picture, error) {
	buf, err := p.cache.Get(id)
	if err == nil {
		return decodePicture(id, buf), nil
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		return Picture{}, fmt.Errorf("unable to read picture %v from cache, cause %w", id, err)
	}
	pic, err := p.db.PictureByID(ctx, id)
	if err != nil {
		return Picture{}, err
	}
	// a failed Set just means the next request goes to the database again
	_ = p.cache.Set(id, encodePicture(pic))
	return pic, nil
}

// CustomerPicture always resolves the customer on the database,
// only the picture content comes from the cache
func (p *PictureCache) CustomerPicture(ctx context.Context, customerID string) (Picture, error) {
	id, err := p.db.CustomerPictureID(ctx, customerID)
	if err != nil {
		return Picture{}, err
	}
	return p.Picture(ctx, id)
}

func (p *PictureCache) Len() int {
	return p.cache.Len()
}

func (p *PictureCache) Close() error {
	return p.cache.Close()
}

func encodePicture(pic Picture) []byte {
	buf := make([]byte, 8+len(pic.ImageBase64))
	binary.BigEndian.PutUint64(buf, pic.Hash)
	copy(buf[8:], pic.ImageBase64)
	return buf
}

func decodePicture(id string, buf []byte) Picture {
	return Picture{
		ID:          id,
		Hash:        binary.BigEndian.Uint64(buf[:8]),
		ImageBase64: string(buf[8:]),
	}
}
