// Package cache provides the capacity-bounded in-process cache used by the
// expansion and hybrid-search stages. Entries expire lazily at read time;
// there is no background sweeper. When the capacity is exceeded the least
// recently used entry is dropped.
package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a TTL cache over an LRU store. Safe for concurrent use.
type Cache[K comparable, V any] struct {
	entries *lru.Cache[K, *entry[V]]
	ttl     time.Duration
	now     func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a Cache with the given capacity and TTL.
func New[K comparable, V any](capacity int, ttl time.Duration) (*Cache[K, V], error) {
	inner, err := lru.New[K, *entry[V]](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Cache[K, V]{entries: inner, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached value if present and not expired. Expired entries
// are removed on read.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.entries.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value, evicting the least recently used entry if full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.entries.Add(key, &entry[V]{value: value, expiresAt: c.now().Add(c.ttl)})
}

// Len returns the number of entries currently stored, including any that
// have expired but not yet been read.
func (c *Cache[K, V]) Len() int { return c.entries.Len() }

// Purge drops all entries.
func (c *Cache[K, V]) Purge() { c.entries.Purge() }

// Key hashes the given parts into a fixed-size cache key.
func Key(parts ...string) [32]byte {
	return sha256.Sum256([]byte(strings.Join(parts, "|")))
}
