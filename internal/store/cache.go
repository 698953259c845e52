
package store

import (
	"sync"
	"time"

	"trend-collector/internal/models"
)

// Cache holds the most recent snapshot together with the time it was stored.
// The pair is always read and replaced under one lock.
type Cache struct {
	mu       sync.Mutex
	snapshot *models.Snapshot
	storedAt time.Time
}

func NewCache() *Cache { return &Cache{} }

// Fresh returns the cached snapshot for date if it was stored less than
// window before now.
func (c *Cache) Fresh(date string, now time.Time, window time.Duration) (*models.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil || c.snapshot.Date() != date {
		return nil, false
	}
	if now.Sub(c.storedAt) >= window {
		return nil, false
	}
	return c.snapshot, true
}

// Set replaces the cached snapshot and its timestamp.
func (c *Cache) Set(s *models.Snapshot, at time.Time) {
	c.mu.Lock()
	c.snapshot, c.storedAt = s, at
	c.mu.Unlock()
}
