package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/image-text-search/internal/domain"
)

// File stores the collection as <dir>/<key>.json. Saves write a temporary
// file in the same directory and rename it over the target, so a reader sees
// either the old or the new collection.
type File struct {
	dir  string
	path string
	key  string
}

// NewFile creates a file store rooted at dir, creating dir if needed.
func NewFile(dir, key string) (*File, error) {
	if key == "" {
		key = DefaultKey
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return nil, fmt.Errorf("invalid store key %q", key)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &File{
		dir:  dir,
		path: filepath.Join(dir, key+".json"),
		key:  key,
	}, nil
}

// Path returns the file backing the collection.
func (f *File) Path() string {
	return f.path
}

// Load implements Store.
func (f *File) Load(ctx context.Context) ([]domain.ProcessedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.ProcessedImage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return decode(data)
}

// Save implements Store.
func (f *File) Save(ctx context.Context, images []domain.ProcessedImage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(images)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, f.key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// Clear implements Store.
func (f *File) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", f.path, err)
	}
	return nil
}

// Close implements Store.
func (f *File) Close() error {
	return nil
}
