package rosepress

import (
	"database/sql"
	"sync"
	"time"

	"github.com/rosepress/rosepress/views"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// CategoryCache is an in-memory TTL cache of the category list. The list
// is read on every public page (filter pills, admin selects) and only
// changes through the category editor, which invalidates it.
type CategoryCache struct {
	mu      sync.RWMutex
	cats    []views.Category
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewCategoryCache creates a CategoryCache backed by the given Store.
func NewCategoryCache(s *Store, ttl time.Duration) *CategoryCache {
	return &CategoryCache{store: s, ttl: ttl}
}

func (c *CategoryCache) valid() bool {
	return c.cats != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *CategoryCache) Invalidate() {
	c.mu.Lock()
	c.cats = nil
	c.mu.Unlock()
}

// List returns the cached categories, reloading from the store when the
// entry is missing or stale. It tries a read lock first; the write lock
// is only taken when a reload is needed.
func (c *CategoryCache) List() ([]views.Category, error) {
	c.mu.RLock()
	if c.valid() {
		cats := c.cats
		c.mu.RUnlock()
		return cats, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.cats, nil
	}
	cats, err := c.store.ListCategories()
	if err != nil {
		return nil, err
	}
	c.cats = cats
	c.fetched = time.Now()
	return cats, nil
}
