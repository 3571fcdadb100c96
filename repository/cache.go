package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kasuganosora/slotgrid/cache"
)

const cacheKeyPrefix = "inventory:save:"

// CacheRepository stores snapshots as JSON under a single cache key.
// With a Redis-backed cache.Cache the save survives restarts.
type CacheRepository struct {
	c   cache.Cache
	key string
}

// NewCache creates a CacheRepository for the save called name.
func NewCache(c cache.Cache, name string) *CacheRepository {
	return &CacheRepository{c: c, key: cacheKeyPrefix + name}
}

func (r *CacheRepository) Load(ctx context.Context) (*SaveData, error) {
	raw, err := r.c.Get(ctx, r.key)
	if cache.IsNotFound(err) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, err
	}
	var data SaveData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("repository: decode %s: %w", r.key, err)
	}
	return &data, nil
}

func (r *CacheRepository) Save(ctx context.Context, data *SaveData) error {
	if err := data.validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return r.c.Set(ctx, r.key, string(raw), 0)
}

func (r *CacheRepository) Exists(ctx context.Context) (bool, error) {
	return r.c.Exists(ctx, r.key)
}
