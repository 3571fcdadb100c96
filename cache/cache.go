// Package cache selects the key/value store and pub/sub bus backing the
// inventory: Redis when an address is configured, in-process otherwise.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kasuganosora/slotgrid/cache/local"
	cacheredis "github.com/kasuganosora/slotgrid/cache/redis"
)

// Cache is the KV surface used for snapshot storage.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// IsNotFound reports whether err is a missing-key error from either backend.
func IsNotFound(err error) bool {
	return errors.Is(err, local.ErrNotFound) || errors.Is(err, cacheredis.ErrNotFound)
}

// Message is a received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

// PubSub publishes inventory events and fans them out to subscribers.
// A subscription ends when its cancel func is called or its ctx is done;
// either way the message channel is closed.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
	Close() error
}

// CacheConfig holds configuration for both Redis and the local backend.
type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

func (cfg CacheConfig) redis() cacheredis.Config {
	return cacheredis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}

// NewCache returns a Redis cache when RedisAddr is set, else a local one.
func NewCache(cfg CacheConfig) (Cache, error) {
	if cfg.RedisAddr != "" {
		return cacheredis.NewCache(cfg.redis())
	}
	return local.NewCache(local.Config{GCInterval: cfg.LocalGCInterval}), nil
}

// NewPubSub returns a Redis pub/sub when RedisAddr is set, else a local one.
func NewPubSub(cfg CacheConfig) (PubSub, error) {
	if cfg.RedisAddr != "" {
		rps, err := cacheredis.NewPubSub(cfg.redis())
		if err != nil {
			return nil, err
		}
		return &bus[*cacheredis.RedisMessage]{
			publish:   rps.Publish,
			subscribe: rps.Subscribe,
			conv: func(m *cacheredis.RedisMessage) *Message {
				return &Message{Channel: m.Channel, Payload: m.Payload}
			},
			close: rps.Close,
			buf:   256,
		}, nil
	}
	lps := local.NewPubSub(cfg.LocalPubSubBuf)
	return &bus[*local.Message]{
		publish:   lps.Publish,
		subscribe: lps.Subscribe,
		conv: func(m *local.Message) *Message {
			return &Message{Channel: m.Channel, Payload: m.Payload}
		},
		close: func() error { lps.Close(); return nil },
		buf:   lps.BufSize(),
	}, nil
}

// bus bridges a backend's message type onto cache.Message.
type bus[M any] struct {
	publish   func(ctx context.Context, channel, message string) error
	subscribe func(ctx context.Context, channels ...string) (<-chan M, func(), error)
	conv      func(M) *Message
	close     func() error
	buf       int
}

func (b *bus[M]) Publish(ctx context.Context, channel, message string) error {
	return b.publish(ctx, channel, message)
}

func (b *bus[M]) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	in, stop, err := b.subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	out := make(chan *Message, b.buf)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			stop()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	go func() {
		defer close(out)
		for m := range in {
			select {
			case out <- b.conv(m):
			case <-done:
			}
		}
	}()
	return out, cancel, nil
}

func (b *bus[M]) Close() error { return b.close() }
