package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bedbook/pkg/logger"
	"bedbook/pkg/model"

	"github.com/go-redis/redis/v8"
)

const (
	catalogKeyPrefix  = "bedbook:catalog:"
	propertyKeyPrefix = "bedbook:property:"
)

// readThrough serves JSON-encoded values from Redis and falls back to load on
// a miss. Redis failures are logged and never surface to the caller.
type readThrough struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func (c *readThrough) get(ctx context.Context, key string, dst any, load func() (any, error)) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dst); jsonErr == nil {
			return nil
		}
		c.log.Warn("Discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Cache read failed", "key", key, "error", err)
	}

	value, err := load()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", "key", key, "error", err)
	}
	return json.Unmarshal(encoded, dst)
}

type cachedCatalogRepository struct {
	inner CatalogRepository
	cache *readThrough
}

// NewCachedCatalogRepository wraps inner with a Redis read-through cache.
// A nil client returns inner unchanged.
func NewCachedCatalogRepository(inner CatalogRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) CatalogRepository {
	if rdb == nil {
		return inner
	}
	return &cachedCatalogRepository{
		inner: inner,
		cache: &readThrough{rdb: rdb, ttl: ttl, log: log},
	}
}

func (r *cachedCatalogRepository) FindByProperty(ctx context.Context, propertyID string) (*model.RoomCatalog, error) {
	var catalog model.RoomCatalog
	err := r.cache.get(ctx, catalogKeyPrefix+propertyID, &catalog, func() (any, error) {
		return r.inner.FindByProperty(ctx, propertyID)
	})
	if err != nil {
		return nil, err
	}
	return &catalog, nil
}

type cachedPropertyRepository struct {
	inner PropertyRepository
	cache *readThrough
}

func NewCachedPropertyRepository(inner PropertyRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) PropertyRepository {
	if rdb == nil {
		return inner
	}
	return &cachedPropertyRepository{
		inner: inner,
		cache: &readThrough{rdb: rdb, ttl: ttl, log: log},
	}
}

func (r *cachedPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	var property model.Property
	err := r.cache.get(ctx, propertyKeyPrefix+id, &property, func() (any, error) {
		return r.inner.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// FindIDsByClient is not cached; ownership lists must reflect writes
// immediately.
func (r *cachedPropertyRepository) FindIDsByClient(ctx context.Context, clientID string) ([]string, error) {
	return r.inner.FindIDsByClient(ctx, clientID)
}
