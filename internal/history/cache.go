package history

import (
	"context"
	"time"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
	"github.com/solar-analytics/parquet-gate/pkg/logger"
	"github.com/solar-analytics/parquet-gate/pkg/redis"
)

// CachedStore serves the latest run and single runs from Redis in front
// of a durable store. Cache failures are logged, never returned.
type CachedStore struct {
	store  contracts.RunStore
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedStore wraps store with a Redis cache
func NewCachedStore(store contracts.RunStore, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedStore {
	return &CachedStore{store: store, cache: cache, ttl: ttl, logger: log}
}

// Record writes through to the store, then refreshes the cache. When
// the store fails the cached latest run is dropped.
func (c *CachedStore) Record(ctx context.Context, run *contracts.ValidationRun) error {
	if err := c.store.Record(ctx, run); err != nil {
		if delErr := c.cache.Delete(ctx, redis.LatestRunKey); delErr != nil {
			c.logger.WithError(delErr).Warn("latest run cache invalidation failed")
		}
		return err
	}

	c.put(ctx, redis.LatestRunKey, run)
	c.put(ctx, redis.RunKey(run.ID), run)
	return nil
}

// Latest reads the cache first
func (c *CachedStore) Latest(ctx context.Context) (*contracts.ValidationRun, error) {
	var run contracts.ValidationRun
	if found, err := c.cache.Get(ctx, redis.LatestRunKey, &run); err != nil {
		c.logger.WithError(err).Warn("latest run cache read failed")
	} else if found {
		return &run, nil
	}

	latest, err := c.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	c.put(ctx, redis.LatestRunKey, latest)
	return latest, nil
}

// Get reads the cache first
func (c *CachedStore) Get(ctx context.Context, id string) (*contracts.ValidationRun, error) {
	var run contracts.ValidationRun
	if found, err := c.cache.Get(ctx, redis.RunKey(id), &run); err != nil {
		c.logger.WithError(err).Warn("run cache read failed")
	} else if found {
		return &run, nil
	}

	stored, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, redis.RunKey(id), stored)
	return stored, nil
}

// List always reads the store
func (c *CachedStore) List(ctx context.Context, limit int) ([]contracts.ValidationRun, error) {
	return c.store.List(ctx, limit)
}

func (c *CachedStore) put(ctx context.Context, key string, run *contracts.ValidationRun) {
	if err := c.cache.Set(ctx, key, run, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("run cache write failed")
	}
}
