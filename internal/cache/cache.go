// Package cache provides an injectable lookup cache with bounded size and
// TTL eviction. Components take the Cache interface so tests can substitute Nop.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Add(key K, value V)
	Remove(key K)
	Purge()
}

type ttlCache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// NewTTL returns a cache holding at most size entries, each evicted after ttl.
func NewTTL[K comparable, V any](size int, ttl time.Duration) Cache[K, V] {
	return &ttlCache[K, V]{lru: expirable.NewLRU[K, V](size, nil, ttl)}
}

func (c *ttlCache[K, V]) Get(key K) (V, bool) { return c.lru.Get(key) }
func (c *ttlCache[K, V]) Add(key K, value V)  { c.lru.Add(key, value) }
func (c *ttlCache[K, V]) Remove(key K)        { c.lru.Remove(key) }
func (c *ttlCache[K, V]) Purge()              { c.lru.Purge() }

// Nop never stores anything. Used in tests and when caching is disabled.
type Nop[K comparable, V any] struct{}

func NewNop[K comparable, V any]() Cache[K, V] { return Nop[K, V]{} }

func (Nop[K, V]) Get(K) (V, bool) {
	var zero V
	return zero, false
}
func (Nop[K, V]) Add(K, V)  {}
func (Nop[K, V]) Remove(K)  {}
func (Nop[K, V]) Purge()    {}
