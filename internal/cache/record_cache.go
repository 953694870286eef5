// Package cache keeps metrics records keyed by the content they were computed from.
// Analysis is deterministic, so an entry never goes stale; the cache is only bounded.
package cache

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/sauco/internal/types"
)

// DefaultMaxEntries bounds a cache created with a non-positive size
const DefaultMaxEntries = 1024

type entry struct {
	record   types.MetricsRecord
	lastUsed int64 // unix nano, atomic
	hits     int64 // atomic
}

// RecordCache is safe for concurrent use by scan workers
type RecordCache struct {
	entries    sync.Map // key -> *entry
	maxEntries int64

	count     int64
	hits      int64
	misses    int64
	evictions int64
}

// Stats is a point-in-time view of cache activity
type Stats struct {
	Entries   int     `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// New creates a cache holding at most maxEntries records
func New(maxEntries int) *RecordCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &RecordCache{maxEntries: int64(maxEntries)}
}

// Key identifies one analysis: the same content measured with another grammar or
// indent unit is a different record.
func Key(grammar string, indentUnit int, fingerprint string) string {
	var b strings.Builder
	b.Grow(len(grammar) + len(fingerprint) + 6)
	b.WriteString(grammar)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(indentUnit))
	b.WriteByte(':')
	b.WriteString(fingerprint)
	return b.String()
}

// Get returns a copy of the cached record for key
func (c *RecordCache) Get(key string) (types.MetricsRecord, bool) {
	val, ok := c.entries.Load(key)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return types.MetricsRecord{}, false
	}
	e := val.(*entry)
	atomic.StoreInt64(&e.lastUsed, time.Now().UnixNano())
	atomic.AddInt64(&e.hits, 1)
	atomic.AddInt64(&c.hits, 1)
	return clone(e.record), true
}

// Put stores a copy of record under key, evicting the least recently used entry when full
func (c *RecordCache) Put(key string, record types.MetricsRecord) {
	e := &entry{record: clone(record), lastUsed: time.Now().UnixNano()}
	if _, loaded := c.entries.LoadOrStore(key, e); loaded {
		return
	}
	if atomic.AddInt64(&c.count, 1) > c.maxEntries {
		c.evictLeastRecent(key)
	}
}

// evictLeastRecent drops the entry unused for longest, never the one just stored
func (c *RecordCache) evictLeastRecent(keep string) {
	var oldestKey string
	oldest := int64(-1)

	c.entries.Range(func(key, value interface{}) bool {
		k := key.(string)
		if k == keep {
			return true
		}
		used := atomic.LoadInt64(&value.(*entry).lastUsed)
		if oldest < 0 || used < oldest {
			oldest = used
			oldestKey = k
		}
		return true
	})

	if oldest >= 0 {
		if _, loaded := c.entries.LoadAndDelete(oldestKey); loaded {
			atomic.AddInt64(&c.count, -1)
			atomic.AddInt64(&c.evictions, 1)
		}
	}
}

// Len returns the number of cached records
func (c *RecordCache) Len() int {
	return int(atomic.LoadInt64(&c.count))
}

// Stats returns hit and eviction counters
func (c *RecordCache) Stats() Stats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Entries:   c.Len(),
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadInt64(&c.evictions),
		HitRate:   hitRate,
	}
}

// Clear removes all entries and resets the counters
func (c *RecordCache) Clear() {
	c.entries.Range(func(key, _ interface{}) bool {
		c.entries.Delete(key)
		return true
	})
	atomic.StoreInt64(&c.count, 0)
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// clone copies the slices so callers never share backing arrays with the cache
func clone(r types.MetricsRecord) types.MetricsRecord {
	r.Methods = slices.Clone(r.Methods)
	r.PerFunctionComplexity = slices.Clone(r.PerFunctionComplexity)
	return r
}
