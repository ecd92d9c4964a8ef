// Package storage persists uploaded images and returns their public URLs.
package storage

import (
	"context"
	"errors"
)

// ErrNotOwned is returned by Delete for URLs the store did not produce.
var ErrNotOwned = errors.New("url does not belong to this store")

// ImageStore saves image bytes under a key and deletes them by URL.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}
