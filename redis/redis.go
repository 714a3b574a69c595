// Package redis provides a Redis-backed implementation of civdoc.Cache
// for embedding responses.
package redis

import (
	"context"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/civdoc/civdoc"
)

var _ civdoc.Cache = (*Cache)(nil)

// Cache stores cache entries in Redis. Entries have no TTL; embedding
// responses for a given content hash never go stale.
type Cache struct {
	client *redisv9.Client
}

// Open connects to the Redis server at addr and verifies the connection
// with a ping.
func Open(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redisv9.NewClient(&redisv9.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, civdoc.Errorf(civdoc.EUNAVAILABLE, "ping redis at %s: %s", addr, err)
	}

	return &Cache{client: client}, nil
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get returns the value stored under key. A missing key is not an error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, civdoc.Errorf(civdoc.EUNAVAILABLE, "redis get %q: %s", key, err)
	}
	return raw, true, nil
}

// Set stores value under key without expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return civdoc.Errorf(civdoc.EUNAVAILABLE, "redis set %q: %s", key, err)
	}
	return nil
}
