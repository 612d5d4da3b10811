package imaging

import (
	"sync"
)

// Content is a decoded payload ready to be served.
type Content struct {
	MIMEType string
	Data     []byte
}

// ContentCache provides thread-safe caching of decoded record payloads to
// avoid base64-decoding the same data URI on every request.
//
// Entries are keyed by record ID. Because records are immutable, an entry
// never goes stale; it only needs to be dropped when its record is deleted.
//
// # Memory Management
//
// Cached payloads remain in memory until explicitly removed via Evict() or
// Clear(). Callers that delete records should evict them as well.
//
// # Example Usage
//
//	cache := imaging.NewContentCache()
//	c, err := cache.Load(img.ID, img.Content)
//	if err != nil {
//	    return err
//	}
//	w.Header().Set("Content-Type", c.MIMEType)
//	w.Write(c.Data)
type ContentCache struct {
	mu      sync.RWMutex
	entries map[string]Content
}

// NewContentCache creates and initializes a new empty content cache.
func NewContentCache() *ContentCache {
	return &ContentCache{
		entries: make(map[string]Content),
	}
}

// Load returns the decoded payload for id, parsing uri on a cache miss.
//
// Returns an error wrapping ErrInvalidDataURI if uri cannot be parsed;
// failures are not cached.
func (c *ContentCache) Load(id, uri string) (Content, error) {
	c.mu.RLock()
	if content, ok := c.entries[id]; ok {
		c.mu.RUnlock()
		return content, nil
	}
	c.mu.RUnlock()

	mime, data, err := ParseDataURI(uri)
	if err != nil {
		return Content{}, err
	}
	content := Content{MIMEType: mime, Data: data}

	c.mu.Lock()
	c.entries[id] = content
	c.mu.Unlock()

	return content, nil
}

// Len returns the number of cached entries.
func (c *ContentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *ContentCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Content)
	c.mu.Unlock()
}

// Evict removes a specific entry by record ID.
//
// If the ID is not in the cache, this method does nothing.
func (c *ContentCache) Evict(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}
