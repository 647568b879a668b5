// Package query is a read-through cache over the entity services for UI
// consumers. Results are cached under hierarchical keys and served until
// they go stale or a write invalidates them; subscribers learn about
// invalidations through a channel and re-read on their own schedule.
//
// Keys are hierarchical slices, e.g. Key("rounds"), Key("rounds", "synced"),
// Key("rounds", "detail", "42"). Invalidation matches by prefix: invalidating
// Key("rounds") drops every rounds key.
package query

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Key builds a hierarchical cache key.
func Key(parts ...string) []string {
	return parts
}

const keySep = "\x1f"

func joinKey(key []string) string {
	return strings.Join(key, keySep)
}

// Fetcher produces a fresh value for a key.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache is a staleness-aware read-through cache. The zero value is not
// usable; construct with New.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]entry
	subs      map[int]subscription
	nextSubID int
	staleTTL  time.Duration
	now       func() time.Time
}

type subscription struct {
	prefix string
	ch     chan []string
}

// Option customizes a Cache.
type Option func(*Cache)

// WithStaleTTL sets how long a cached value is served before the next read
// re-runs the fetcher. Zero means values never go stale on their own and
// are dropped only by invalidation.
func WithStaleTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.staleTTL = ttl }
}

func withClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[string]entry),
		subs:     make(map[int]subscription),
		staleTTL: 30 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, running fetch when the key is
// absent or stale. A fetch failure is returned to the caller and leaves any
// previously cached value in place.
func (c *Cache) Get(ctx context.Context, key []string, fetch Fetcher) (any, error) {
	k := joinKey(key)

	c.mu.Lock()
	e, ok := c.entries[k]
	fresh := ok && (c.staleTTL == 0 || c.now().Sub(e.fetchedAt) < c.staleTTL)
	c.mu.Unlock()

	if fresh {
		return e.value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[k] = entry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops every cached entry whose key starts with prefix and
// notifies matching subscribers. Notification is non-blocking: a subscriber
// that has not drained its channel misses no correctness, only duplicate
// wakeups. Sends happen under the mutex so they are ordered against a
// concurrent cancel closing the channel.
func (c *Cache) Invalidate(prefix []string) {
	p := joinKey(prefix)

	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if k == p || strings.HasPrefix(k, p+keySep) {
			delete(c.entries, k)
		}
	}
	for _, sub := range c.subs {
		if sub.prefix == p || strings.HasPrefix(sub.prefix, p+keySep) || strings.HasPrefix(p, sub.prefix+keySep) {
			select {
			case sub.ch <- prefix:
			default:
			}
		}
	}
}

// Subscribe registers interest in a key prefix. The returned channel
// receives the invalidated prefix after each matching Invalidate; the
// cancel func removes the subscription and closes the channel.
func (c *Cache) Subscribe(prefix []string) (<-chan []string, func()) {
	ch := make(chan []string, 1)

	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = subscription{prefix: joinKey(prefix), ch: ch}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			// closing under the mutex keeps the close ordered against
			// Invalidate's sends
			close(sub.ch)
		}
	}
	return ch, cancel
}

// Mutate runs a write and, on success, invalidates the affected prefixes.
func (c *Cache) Mutate(ctx context.Context, fn func(ctx context.Context) error, invalidates ...[]string) error {
	if err := fn(ctx); err != nil {
		return err
	}
	for _, prefix := range invalidates {
		c.Invalidate(prefix)
	}
	return nil
}
