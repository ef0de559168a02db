package estimation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// Cache keeps recent estimates in memory so an unchanged draft does not hit
// the estimation service again.
type Cache struct {
	data    map[string]*cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once
}

type cacheEntry struct {
	value      *Estimate
	expiration time.Time
}

// NewCache creates a cache whose entries live for ttl.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		data:    make(map[string]*cacheEntry),
		ttl:     ttl,
		cleanup: time.NewTicker(time.Minute),
		done:    make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// Get retrieves a copy of a cached estimate
func (c *Cache) Get(key string) (*Estimate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || time.Now().After(entry.expiration) {
		return nil, false
	}
	return entry.value.Clone(), true
}

// Set stores a copy of an estimate
func (c *Cache) Set(key string, value *Estimate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		value:      value.Clone(),
		expiration: time.Now().Add(c.ttl),
	}
}

// Size returns the number of entries, expired ones included until the next cleanup.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *Cache) cleanupLoop() {
	for {
		select {
		case <-c.cleanup.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.After(entry.expiration) {
			delete(c.data, key)
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (c *Cache) Stop() {
	c.once.Do(func() {
		c.cleanup.Stop()
		close(c.done)
	})
}

// RequestKey derives the cache key of a request from its JSON encoding.
func RequestKey(req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// CachingEstimator serves repeated requests from a Cache.
type CachingEstimator struct {
	next  Estimator
	cache *Cache
}

// NewCachingEstimator wraps next with cache
func NewCachingEstimator(next Estimator, cache *Cache) *CachingEstimator {
	return &CachingEstimator{next: next, cache: cache}
}

// Estimate returns a cached estimate when one exists for an identical request.
func (e *CachingEstimator) Estimate(ctx context.Context, req Request) (*Estimate, error) {
	key, err := RequestKey(req)
	if err != nil {
		return e.next.Estimate(ctx, req)
	}
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	estimate, err := e.next.Estimate(ctx, req)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, estimate)
	return estimate, nil
}
