// Package local is the in-process cache backend used when no Redis address
// is configured, and in tests.
package local

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

type Config struct {
	GCInterval time.Duration
}

type value struct {
	data    string
	expires time.Time // zero means no expiry
}

func (v value) live(now time.Time) bool {
	return v.expires.IsZero() || now.Before(v.expires)
}

// Cache is a mutex-guarded map with optional per-key TTLs. Expired keys are
// invisible immediately and removed by a periodic sweep.
type Cache struct {
	mu   sync.Mutex
	kv   map[string]value
	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// NewCache starts the sweep goroutine; call Close to stop it.
func NewCache(cfg Config) *Cache {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c := &Cache{
		kv:   make(map[string]value),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	go c.sweepEvery(interval)
	return c
}

func (c *Cache) sweepEvery(d time.Duration) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

// sweep drops expired keys and returns how many went.
func (c *Cache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, v := range c.kv {
		if !v.live(now) {
			delete(c.kv, k)
			n++
		}
	}
	return n
}

func (c *Cache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *Cache) get(key string) (value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.kv[key]
	if ok && !v.live(c.now()) {
		delete(c.kv, key)
		return value{}, false
	}
	return v, ok
}

func (c *Cache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.get(key)
	if !ok {
		return "", ErrNotFound
	}
	return v.data, nil
}

// Set stores value; ttl <= 0 keeps it until deleted.
func (c *Cache) Set(_ context.Context, key, data string, ttl time.Duration) error {
	v := value{data: data}
	c.mu.Lock()
	if ttl > 0 {
		v.expires = c.now().Add(ttl)
	}
	c.kv[key] = v
	c.mu.Unlock()
	return nil
}

func (c *Cache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.kv, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.get(key)
	return ok, nil
}
