// Package cache provides a fixed-capacity, thread-safe memoization cache for
// expensive derived values. Eviction is insertion-order only (oldest first),
// not LRU, to keep the contract simple and auditable. The cache is
// functionally transparent: removing it changes latency, never results,
// which is enforced by never caching error results.
// Implements: prd005-bounded-cache; docs/ARCHITECTURE § Bounded Cache.
package cache

import (
	"errors"
	"sync"
)

// ErrInvalidCapacity is returned by New for a non-positive capacity.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// Sizer reports the approximate byte size of a cached value. Hosts supply one
// when using a byte budget.
type Sizer func(value any) int

// Stats is a point-in-time snapshot of cache bookkeeping.
type Stats struct {
	Items     int     `json:"items"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Evictions uint64  `json:"evictions"`
}

type entry struct {
	value any
	size  int
}

// Bounded is a process-wide cache shared by many object instances. All
// bookkeeping is synchronous and lock-protected regardless of how callers
// schedule the underlying computation.
type Bounded struct {
	mu        sync.Mutex
	capacity  int
	maxBytes  int
	sizer     Sizer
	entries   map[string]*entry
	order     []string
	bytes     int
	hits      uint64
	misses    uint64
	evictions uint64
}

// Option configures a Bounded cache.
type Option func(*Bounded)

// WithByteBudget adds an aggregate byte bound on top of the item capacity.
// The sizer is consulted once per insert. The budget evicts oldest-first but
// never evicts the sole remaining entry: a single value larger than maxBytes
// stays cached (alone) until the next insert ages it out.
func WithByteBudget(maxBytes int, sizer Sizer) Option {
	return func(b *Bounded) {
		b.maxBytes = maxBytes
		b.sizer = sizer
	}
}

// New creates a cache holding at most capacity items.
func New(capacity int, opts ...Option) (*Bounded, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	b := &Bounded{
		capacity: capacity,
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Get returns the cached value for key. Every call counts as a hit or a miss.
func (b *Bounded) Get(key string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[key]
	if !ok {
		b.misses++
		return nil, false
	}
	b.hits++
	return e.value, true
}

// Put inserts or replaces the value for key. Overwriting a key keeps its
// original insertion slot, so it still ages out in first-insert order. The
// capacity check runs on every insert; growth past the bound is impossible
// rather than detected after the fact.
func (b *Bounded) Put(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.putLocked(key, value)
}

func (b *Bounded) putLocked(key string, value any) {
	size := 0
	if b.sizer != nil {
		size = b.sizer(value)
	}
	if e, ok := b.entries[key]; ok {
		b.bytes += size - e.size
		e.value = value
		e.size = size
	} else {
		b.entries[key] = &entry{value: value, size: size}
		b.order = append(b.order, key)
		b.bytes += size
	}
	for len(b.entries) > b.capacity || (b.maxBytes > 0 && b.bytes > b.maxBytes && len(b.order) > 1) {
		b.evictOldestLocked()
	}
}

func (b *Bounded) evictOldestLocked() {
	oldest := b.order[0]
	b.order = b.order[1:]
	if e, ok := b.entries[oldest]; ok {
		b.bytes -= e.size
		delete(b.entries, oldest)
		b.evictions++
	}
}

// GetOrCompute returns the cached value for key, computing and inserting it
// on a miss. The computation runs outside the lock; before inserting, the
// cache is rechecked so concurrent callers racing on the same key settle on
// one stored value. Errors are returned to the caller and never cached.
func (b *Bounded) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	b.mu.Lock()
	if e, ok := b.entries[key]; ok {
		b.hits++
		b.mu.Unlock()
		return e.value, nil
	}
	b.misses++
	b.mu.Unlock()

	value, err := compute()
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[key]; ok {
		// Another caller inserted while we computed; theirs wins.
		return e.value, nil
	}
	b.putLocked(key, value)
	return value, nil
}

// Len returns the current item count.
func (b *Bounded) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Stats returns a snapshot of the hit/miss/eviction counters.
func (b *Bounded) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Stats{
		Items:     len(b.entries),
		Hits:      b.hits,
		Misses:    b.misses,
		Evictions: b.evictions,
	}
	if total := b.hits + b.misses; total > 0 {
		s.HitRate = float64(b.hits) / float64(total)
	}
	return s
}
