// Package store persists a working collection under a single key in a
// durable key-value store.
//
// The whole collection is encoded as one JSON array of domain.ProcessedImage
// records, content included, so a Load after Save reconstructs every field.
// A missing key loads as an empty collection. A value that fails to parse is
// reported as ErrCorrupt and is never repaired.
//
// Backends:
//
//   - memory: process-local, for tests and throwaway runs
//   - file:   one JSON file per key, replaced atomically
//   - sqlite: a kv table via github.com/mattn/go-sqlite3
//   - redis:  a single string value via github.com/redis/go-redis/v9
//   - s3:     one object per key via github.com/aws/aws-sdk-go-v2
//
// Use New to build the backend named by Config.Driver.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/image-text-search/internal/domain"
)

// DefaultKey is the key the collection is stored under unless configured.
const DefaultKey = "uploadedImages"

var (
	// ErrCorrupt reports a persisted collection that cannot be parsed.
	ErrCorrupt = errors.New("stored collection is corrupt")

	// ErrUnknownDriver reports an unsupported Config.Driver.
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Store loads and saves a whole collection.
type Store interface {
	Load(ctx context.Context) ([]domain.ProcessedImage, error)
	Save(ctx context.Context, images []domain.ProcessedImage) error
	Clear(ctx context.Context) error
	Close() error
}

func encode(images []domain.ProcessedImage) ([]byte, error) {
	if images == nil {
		images = []domain.ProcessedImage{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}
	return data, nil
}

// decode parses a stored value. An empty value is an empty collection.
func decode(data []byte) ([]domain.ProcessedImage, error) {
	if len(data) == 0 {
		return []domain.ProcessedImage{}, nil
	}

	var images []domain.ProcessedImage
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if images == nil {
		return []domain.ProcessedImage{}, nil
	}

	for i, img := range images {
		if img.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrCorrupt, i)
		}
	}
	return images, nil
}
