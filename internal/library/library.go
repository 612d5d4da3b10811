// Package library owns a working collection of processed images.
//
// A Library ties the ingestion pipeline, the search engine and a durable
// store together. It skips files whose name is already in the collection,
// appends new records in upload order, persists after every change and runs
// searches against snapshots so readers never block on a running ingest.
//
// Only one Add runs at a time. A second concurrent Add fails immediately
// with ErrBusy instead of queueing.
package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/image-text-search/internal/domain"
	"github.com/ironsheep/image-text-search/internal/ingest"
	"github.com/ironsheep/image-text-search/internal/search"
	"github.com/ironsheep/image-text-search/internal/store"
)

var (
	// ErrBusy is returned by Add while another Add is processing.
	ErrBusy = errors.New("another upload is still processing")

	// ErrNotFound is returned when no record has the requested ID.
	ErrNotFound = errors.New("image not found")
)

// Processor turns raw files into records. *ingest.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, files []domain.RawFile, onProgress ingest.ProgressFunc) ([]domain.ProcessedImage, error)
}

// AddResult summarizes an Add call.
type AddResult struct {
	Added   []domain.ProcessedImage `json:"added" yaml:"added"`
	Skipped []string                `json:"skipped" yaml:"skipped"`
}

// Library is a persistent, concurrency-safe working collection.
type Library struct {
	store     store.Store
	processor Processor
	log       *zap.Logger

	// adding is held for the whole of an Add, including OCR.
	adding sync.Mutex

	mu     sync.RWMutex
	images []domain.ProcessedImage
}

// Open loads the collection from st.
func Open(ctx context.Context, st store.Store, processor Processor, log *zap.Logger) (*Library, error) {
	if log == nil {
		log = zap.NewNop()
	}

	images, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	log.Info("Loaded image collection", zap.Int("images", len(images)))

	return &Library{
		store:     st,
		processor: processor,
		log:       log,
		images:    images,
	}, nil
}

// Add ingests files whose names are not already in the collection, appends
// the new records and saves. Duplicate names within files are skipped after
// their first occurrence. On failure the collection is left unchanged.
func (l *Library) Add(ctx context.Context, files []domain.RawFile, onProgress ingest.ProgressFunc) (AddResult, error) {
	if !l.adding.TryLock() {
		return AddResult{}, ErrBusy
	}
	defer l.adding.Unlock()

	fresh, skipped := l.partition(files)
	for _, name := range skipped {
		l.log.Info("Skipping duplicate image", zap.String("name", name))
	}

	added, err := l.processor.Process(ctx, fresh, onProgress)
	if err != nil {
		return AddResult{}, err
	}
	result := AddResult{Added: added, Skipped: skipped}
	if len(added) == 0 {
		return result, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.ProcessedImage, 0, len(l.images)+len(added))
	next = append(next, l.images...)
	next = append(next, added...)
	if err := l.store.Save(ctx, next); err != nil {
		return AddResult{}, fmt.Errorf("failed to save collection: %w", err)
	}
	l.images = next

	l.log.Info("Added images",
		zap.Int("added", len(added)),
		zap.Int("skipped", len(skipped)),
		zap.Int("total", len(next)))
	return result, nil
}

// partition splits files into those to process and the names to skip.
func (l *Library) partition(files []domain.RawFile) ([]domain.RawFile, []string) {
	l.mu.RLock()
	seen := make(map[string]bool, len(l.images)+len(files))
	for _, img := range l.images {
		seen[img.Name] = true
	}
	l.mu.RUnlock()

	fresh := make([]domain.RawFile, 0, len(files))
	skipped := []string{}
	for _, f := range files {
		if seen[f.Name] {
			skipped = append(skipped, f.Name)
			continue
		}
		seen[f.Name] = true
		fresh = append(fresh, f)
	}
	return fresh, skipped
}

// Search returns records whose text contains query.
func (l *Library) Search(query string) []domain.ProcessedImage {
	return search.Search(query, l.List())
}

// List returns a snapshot of the collection in insertion order.
func (l *Library) List() []domain.ProcessedImage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.images)
}

// Len returns the number of records.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.images)
}

// Get returns the record with the given ID.
func (l *Library) Get(id string) (domain.ProcessedImage, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.indexOf(id)
	if i < 0 {
		return domain.ProcessedImage{}, false
	}
	return l.images[i], true
}

// Delete removes the record with the given ID and saves.
func (l *Library) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := slices.Delete(slices.Clone(l.images), i, i+1)
	if err := l.store.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	name := l.images[i].Name
	l.images = next

	l.log.Info("Deleted image", zap.String("id", id), zap.String("name", name))
	return nil
}

// Clear removes every record and clears the store.
func (l *Library) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	n := len(l.images)
	l.images = []domain.ProcessedImage{}

	l.log.Info("Cleared image collection", zap.Int("removed", n))
	return nil
}

// indexOf must be called with mu held.
func (l *Library) indexOf(id string) int {
	return slices.IndexFunc(l.images, func(img domain.ProcessedImage) bool {
		return img.ID == id
	})
}
