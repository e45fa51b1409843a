package services

import (
	"time"
)

// DefaultVerifiedTTL is how long a verified task name suppresses
// re-verification
const DefaultVerifiedTTL = time.Hour

// VerifiedTaskCache remembers composed task names that were recently
// verified against the Timer, so repeated occurrences within the TTL
// skip the list-and-diff round trip. This is a performance guard, not a
// correctness guarantee: a task updated again within the TTL window is
// not re-checked, which is accepted. Entries are purged lazily before
// each lookup.
//
// The cache is not thread-safe; the engine runs single-threaded.
type VerifiedTaskCache struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

// NewVerifiedTaskCache creates a cache with the given TTL
func NewVerifiedTaskCache(ttl time.Duration) *VerifiedTaskCache {
	if ttl <= 0 {
		ttl = DefaultVerifiedTTL
	}
	return &VerifiedTaskCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// Verified reports whether the task name was marked within the TTL
func (c *VerifiedTaskCache) Verified(name string) bool {
	c.purge()
	_, ok := c.entries[name]
	return ok
}

// Mark records the task name as verified now
func (c *VerifiedTaskCache) Mark(name string) {
	c.entries[name] = c.now()
}

// Len returns the number of live entries after purging
func (c *VerifiedTaskCache) Len() int {
	c.purge()
	return len(c.entries)
}

func (c *VerifiedTaskCache) purge() {
	cutoff := c.now().Add(-c.ttl)
	for name, markedAt := range c.entries {
		if markedAt.Before(cutoff) {
			delete(c.entries, name)
		}
	}
}
