// Package cache is a bounded read-through cache with a fixed TTL per entry.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Loader produces the bytes for a missing key.
type Loader func(ctx context.Context) ([]byte, error)

type Cache struct {
	name     string
	entries  *expirable.LRU[string, []byte]
	group    singleflight.Group
	requests *prometheus.CounterVec
}

// New registers cache_requests_total on reg (reusing it when another cache already did).
// A nil reg skips metrics.
func New(name string, size int, ttl time.Duration, reg prometheus.Registerer) (*Cache, error) {
	if size < 1 {
		size = 1
	}
	c := &Cache{
		name:    name,
		entries: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
	if reg == nil {
		return c, nil
	}

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Read-through cache lookups by result.",
		},
		[]string{"cache", "result"},
	)
	if err := reg.Register(requests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		requests = existing
	}
	c.requests = requests
	return c, nil
}

func (c *Cache) observe(result string) {
	if c.requests != nil {
		c.requests.WithLabelValues(c.name, result).Inc()
	}
}

// GetOrLoad returns the cached bytes for key or runs loader once for all concurrent
// callers of the same key. Loader errors are returned and not stored.
func (c *Cache) GetOrLoad(ctx context.Context, key string, loader Loader) ([]byte, bool, error) {
	if c == nil {
		b, err := loader(ctx)
		return b, false, err
	}
	if b, ok := c.entries.Get(key); ok {
		c.observe(ResultHit)
		return b, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if b, ok := c.entries.Get(key); ok {
			return b, nil
		}
		b, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, b)
		return b, nil
	})
	if err != nil {
		c.observe(ResultError)
		return nil, false, err
	}
	c.observe(ResultMiss)
	return v.([]byte), false, nil
}

// InvalidatePrefix drops every key starting with prefix and returns how many were removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, k := range c.entries.Keys() {
		if strings.HasPrefix(k, prefix) {
			if c.entries.Remove(k) {
				n++
			}
		}
	}
	return n
}

func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}

