package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(prefix string)

	// Size returns the current number of items in the cache
	Size() int
}

// Ristretto is a Cache backed by ristretto with a fixed TTL. It tracks its
// keys so that all entries of a user can be dropped at once.
type Ristretto[T any] struct {
	store *ristretto.Cache[string, T]
	ttl   time.Duration

	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewRistretto creates a cache holding up to maxItems entries for ttl each.
func NewRistretto[T any](maxItems int64, ttl time.Duration) (*Ristretto[T], error) {
	store, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters: maxItems * 10, // number of keys to track frequency of
		MaxCost:     maxItems,
		BufferItems: 64, // number of keys per Get buffer
		// every entry costs 1, so MaxCost is an item count
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Ristretto[T]{
		store: store,
		ttl:   ttl,
		keys:  make(map[string]struct{}),
	}, nil
}

func (c *Ristretto[T]) Get(key string) (T, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		c.mu.Lock()
		delete(c.keys, key)
		c.mu.Unlock()
	}
	return v, ok
}

// Set stores data and waits until it is visible to readers.
func (c *Ristretto[T]) Set(key string, data T) {
	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()
	c.store.SetWithTTL(key, data, 1, c.ttl)
	c.store.Wait()
}

func (c *Ristretto[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.keys, key)
	c.mu.Unlock()
	c.store.Del(key)
}

func (c *Ristretto[T]) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.keys {
		if strings.HasPrefix(key, prefix) {
			delete(c.keys, key)
			c.store.Del(key)
		}
	}
}

func (c *Ristretto[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

func (c *Ristretto[T]) Close() {
	c.store.Close()
}
