package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "skara:msg:"

// Redis is a Store shared by every bot process using the same server.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects to the server at url (redis://...) and checks it responds.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

// Seen implements Store with SET NX, so concurrent processes agree on
// which one handles a message.
func (r *Redis) Seen(ctx context.Context, id string) (bool, error) {
	set, err := r.rdb.SetNX(ctx, Key(id), 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message: %w", err)
	}
	return !set, nil
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Key returns the redis key for a message ID.
func Key(id string) string {
	return keyPrefix + id
}
