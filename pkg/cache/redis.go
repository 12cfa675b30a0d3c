// Package cache keeps the latest published configuration in Redis so the
// public form does not hit Postgres on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/booth-festa/internal/models"
	"github.com/redis/go-redis/v9"
)

const snapshotKey = "booth-festa:config:current"

var ErrMiss = errors.New("cache miss")

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Cache] Redis connected at %s", addr)
	return rdb, nil
}

type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache stores snapshots under a fixed key. A zero ttl keeps
// entries until they are invalidated.
func NewSnapshotCache(rdb *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{rdb: rdb, ttl: ttl}
}

func (c *SnapshotCache) Get(ctx context.Context) (*models.ConfigPublished, error) {
	raw, err := c.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var snap models.ConfigPublished
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt entry is treated as absent; the caller refills it.
		log.Printf("[Cache] dropping undecodable snapshot: %v", err)
		_ = c.rdb.Del(ctx, snapshotKey).Err()
		return nil, ErrMiss
	}
	return &snap, nil
}

func (c *SnapshotCache) Set(ctx context.Context, snap models.ConfigPublished) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
