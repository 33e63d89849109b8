package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when nothing is stored at the path.
var ErrNotFound = errors.New("object not found")

// Storage is a flat blob store addressed by slash-separated relative paths.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	// Get returns ErrNotFound (wrapped) when the path does not exist.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is a no-op for missing paths.
	Delete(ctx context.Context, path string) error
}
