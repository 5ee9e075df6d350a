package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bedbook/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const idempotencyKeyPrefix = "bedbook:idempotency:"

// RedisIdempotencyStore shares replay entries across instances. Redis
// failures degrade to "not cached" rather than failing the request.
type RedisIdempotencyStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
	log     *logger.Logger
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl, timeout: 500 * time.Millisecond, log: log}
}

func (s *RedisIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.rdb.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Idempotency lookup failed", "error", err)
		}
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("Discarding unreadable idempotency entry", "error", err)
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	data, err := json.Marshal(response)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.rdb.Set(ctx, idempotencyKeyPrefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("Idempotency store failed", "error", err)
	}
}

// Stop is a no-op; the client is closed with the application.
func (s *RedisIdempotencyStore) Stop() {}

// NewIdempotencyStore prefers Redis when a client is connected.
func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration, log *logger.Logger) IdempotencyStore {
	if rdb == nil {
		return NewInMemoryIdempotencyStore(ttl)
	}
	return NewRedisIdempotencyStore(rdb, ttl, log)
}
