package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStorage keeps objects under a single directory. Paths cannot escape it.
type LocalStorage struct {
	root *os.Root
}

// NewLocalStorage creates basePath if needed and opens it as the storage root.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	root, err := os.OpenRoot(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage directory: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) Save(ctx context.Context, path string, content io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path = filepath.FromSlash(path)

	if err := s.root.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := s.root.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = s.root.Remove(path)
		return fmt.Errorf("failed to write file content: %w", err)
	}
	return f.Close()
}

func (s *LocalStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.root.Open(filepath.FromSlash(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := s.root.Remove(filepath.FromSlash(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Close releases the root directory handle.
func (s *LocalStorage) Close() error {
	return s.root.Close()
}
