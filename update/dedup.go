package update

import (
	"context"
	"sync"
	"time"
)

// Deduplicator remembers recently seen update IDs
type Deduplicator interface {
	// Seen records updateID and reports whether it was already recorded
	Seen(ctx context.Context, updateID int64) (bool, error)
	// Forget drops updateID so a redelivery is processed again
	Forget(ctx context.Context, updateID int64) error
}

/* MemoryDeduplicator keeps update IDs for a fixed TTL
 * Enough for a single instance; use the redis store when scaling out
 */
type MemoryDeduplicator struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	seen      map[int64]time.Time
	lastPrune time.Time
}

// NewMemoryDeduplicator creates an in-process dedup set
func NewMemoryDeduplicator(ttl time.Duration) *MemoryDeduplicator {
	return &MemoryDeduplicator{
		ttl:  ttl,
		now:  time.Now,
		seen: make(map[int64]time.Time),
	}
}

// Seen records updateID and reports whether it was already recorded within the TTL
func (d *MemoryDeduplicator) Seen(_ context.Context, updateID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if now.Sub(d.lastPrune) >= d.ttl {
		for id, at := range d.seen {
			if now.Sub(at) >= d.ttl {
				delete(d.seen, id)
			}
		}
		d.lastPrune = now
	}

	if at, ok := d.seen[updateID]; ok && now.Sub(at) < d.ttl {
		return true, nil
	}
	d.seen[updateID] = now
	return false, nil
}

// Forget drops updateID from the set
func (d *MemoryDeduplicator) Forget(_ context.Context, updateID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, updateID)
	return nil
}

// Len returns the number of remembered IDs
func (d *MemoryDeduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
