package rediscache

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
)

const keyPrefix = "caselog:dedup:"

// Cache is a Redis backed DedupCache. A shared keyspace gives
// cross-instance deduplication when multiple server replicas receive
// webhooks.
type Cache struct {
	client *redis.Client
}

var _ interfaces.DedupCache = (*Cache)(nil)

func New(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to connect redis", goerr.V("addr", addr))
	}

	return &Cache{client: client}, nil
}

func (x *Cache) Seen(ctx context.Context, key string) (bool, error) {
	n, err := x.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, goerr.Wrap(err, "failed to check dedup key", goerr.V("key", key))
	}
	return n > 0, nil
}

func (x *Cache) Mark(ctx context.Context, key string, ttl time.Duration) error {
	if err := x.client.Set(ctx, keyPrefix+key, "1", ttl).Err(); err != nil {
		return goerr.Wrap(err, "failed to set dedup key", goerr.V("key", key))
	}
	return nil
}

func (x *Cache) Close() error {
	return x.client.Close()
}
