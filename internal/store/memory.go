package store

import (
	"context"
	"sync"

	"github.com/ironsheep/image-text-search/internal/domain"
)

// Memory keeps the encoded collection in process memory. Values are stored
// encoded so a Load never aliases a slice handed to Save.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load implements Store.
func (m *Memory) Load(ctx context.Context) ([]domain.ProcessedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decode(m.data)
}

// Save implements Store.
func (m *Memory) Save(ctx context.Context, images []domain.ProcessedImage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(images)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Clear implements Store.
func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
