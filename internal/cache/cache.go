// Package cache provides a small expiring key/value store that components
// receive explicitly instead of sharing package-level maps.
package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache is the capability consumers depend on.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Has(key K) bool
	Delete(key K)
}

// Memory is an in-process Cache backed by ttlcache. Reads do not extend an
// entry's lifetime; expired entries are dropped lazily.
type Memory[K comparable, V any] struct {
	items *ttlcache.Cache[K, V]
}

// NewMemory creates an empty in-memory cache.
func NewMemory[K comparable, V any]() *Memory[K, V] {
	return &Memory[K, V]{
		items: ttlcache.New[K, V](ttlcache.WithDisableTouchOnHit[K, V]()),
	}
}

// Get returns the cached value if present and not expired.
func (c *Memory[K, V]) Get(key K) (V, bool) {
	item := c.items.Get(key)
	if item == nil {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

// Set stores value under key. A non-positive ttl never expires.
func (c *Memory[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	c.items.Set(key, value, ttl)
}

// Has reports whether key holds an unexpired value.
func (c *Memory[K, V]) Has(key K) bool {
	return c.items.Has(key)
}

// Delete removes key.
func (c *Memory[K, V]) Delete(key K) {
	c.items.Delete(key)
}

// Len returns the number of unexpired entries.
func (c *Memory[K, V]) Len() int {
	return c.items.Len()
}

// Nop is a Cache that never stores anything.
type Nop[K comparable, V any] struct{}

// Get always misses.
func (Nop[K, V]) Get(K) (V, bool) {
	var zero V
	return zero, false
}

// Set discards the value.
func (Nop[K, V]) Set(K, V, time.Duration) {}

// Has always reports false.
func (Nop[K, V]) Has(K) bool { return false }

// Delete does nothing.
func (Nop[K, V]) Delete(K) {}
