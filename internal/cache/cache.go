// Package cache is the split-and-conquer result cache of the DOMAIN
// STACK: when a large query is partitioned into sub-queries (e.g. one
// per fixed ReLU phase pattern) and solved by separate worker
// processes, the cache lets a worker skip a sub-query another worker
// already resolved. Grounded directly on the teacher's
// NewRedisClient (internal/config/redis.go, since deleted from this
// tree in favor of this package): same client options, same
// don't-fail-startup-on-unreachable-Redis posture.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"plverify/internal/shared"
)

// Entry is the cached outcome of one query hash.
type Entry struct {
	Outcome shared.LoopOutcome `json:"outcome"`
	Verdict string              `json:"verdict"`
}

// Cache wraps a redis client keyed by query content hash.
type Cache struct {
	client *redis.Client
	log    *zap.Logger
	ttl    time.Duration
}

// New connects to Redis at addr/db, logging but not failing on an
// unreachable server — a worker without cache access still solves
// correctly, just without the coordination speedup.
func New(addr string, db int, log *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("cache: redis unavailable, split-and-conquer coordination disabled", zap.Error(err))
	} else {
		log.Info("cache: redis connected", zap.String("addr", addr), zap.Int("db", db))
	}

	return &Cache{client: client, log: log, ttl: 24 * time.Hour}
}

func cacheKey(queryHash string) string { return fmt.Sprintf("plverify:query:%s", queryHash) }

// Get returns a previously cached verdict for queryHash, if any.
func (c *Cache) Get(ctx context.Context, queryHash string) (*Entry, bool) {
	data, err := c.client.Get(ctx, cacheKey(queryHash)).Bytes()
	if err != nil {
		return nil, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.log.Warn("cache: corrupt cache entry", zap.String("key", queryHash), zap.Error(err))
		return nil, false
	}
	return &e, true
}

// Set stores a verdict for queryHash, subject to the cache's TTL.
func (c *Cache) Set(ctx context.Context, queryHash string, e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		c.log.Warn("cache: failed to marshal entry", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(queryHash), data, c.ttl).Err(); err != nil {
		c.log.Warn("cache: failed to store entry", zap.Error(err))
	}
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error { return c.client.Close() }
