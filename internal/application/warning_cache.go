package application

import (
	"sync"
	"time"
)

// warningCache remembers the teacher overlap warnings computed for a
// timetable listing, keyed by day filter. Every session write bumps the
// version, which drops all entries and refuses results computed from a
// snapshot read before the write.
type warningCache struct {
	mu      sync.Mutex
	now     func() time.Time
	ttl     time.Duration
	version uint64
	byDay   map[string]cachedWarnings
}

type cachedWarnings struct {
	warnings []ConflictWarning
	storedAt time.Time
}

func newWarningCache(ttl time.Duration, now func() time.Time) *warningCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &warningCache{now: now, ttl: ttl, byDay: make(map[string]cachedWarnings)}
}

// currentVersion must be read before the snapshot the warnings are computed
// from.
func (c *warningCache) currentVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *warningCache) lookup(day string) ([]ConflictWarning, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.byDay[warningCacheKey(day)]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.byDay, warningCacheKey(day))
		return nil, false
	}
	return cloneWarnings(entry.warnings), true
}

// remember stores warnings unless a write happened after version was read.
func (c *warningCache) remember(day string, version uint64, warnings []ConflictWarning) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		return
	}
	c.byDay[warningCacheKey(day)] = cachedWarnings{warnings: cloneWarnings(warnings), storedAt: c.now()}
}

func (c *warningCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.byDay = make(map[string]cachedWarnings)
}

func cloneWarnings(warnings []ConflictWarning) []ConflictWarning {
	if len(warnings) == 0 {
		return nil
	}
	return append([]ConflictWarning(nil), warnings...)
}

// warningCacheKey keys a listing by its day filter; "" is the whole week.
func warningCacheKey(day string) string {
	if day == "" {
		return "*"
	}
	return day
}
