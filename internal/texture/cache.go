package texture

import (
	"image"
	"sync"

	"mmd-renderer/internal/tim"
)

// Cache hands renderers a stable copy of each atlas and re-copies it only
// when the atlas revision moved. Safe for concurrent readers.
type Cache struct {
	mu      sync.RWMutex
	items   map[*tim.Atlas]*cacheEntry
	uploads int
}

type cacheEntry struct {
	img      *image.NRGBA
	revision uint64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[*tim.Atlas]*cacheEntry)}
}

// Snapshot returns the pixels of a as of its current revision.
// Returns nil for a nil atlas.
func (c *Cache) Snapshot(a *tim.Atlas) *image.NRGBA {
	if a == nil {
		return nil
	}
	rev := a.Revision()

	// Fast path: read lock
	c.mu.RLock()
	if e, ok := c.items[a]; ok && e.revision == rev {
		c.mu.RUnlock()
		return e.img
	}
	c.mu.RUnlock()

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[a]; ok && e.revision == rev {
		return e.img
	}
	src := a.Image()
	img := &image.NRGBA{
		Pix:    append([]uint8(nil), src.Pix...),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	c.items[a] = &cacheEntry{img: img, revision: rev}
	c.uploads++
	return img
}

// Uploads returns how many copies were made.
func (c *Cache) Uploads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uploads
}
