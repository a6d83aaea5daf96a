package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
)

// Cache is an in-process DedupCache. Used when Redis is not configured.
type Cache struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

var _ interfaces.DedupCache = (*Cache)(nil)

func New() *Cache {
	return &Cache{
		keys: make(map[string]time.Time),
	}
}

func (x *Cache) Seen(ctx context.Context, key string) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	expire, ok := x.keys[key]
	return ok && time.Now().Before(expire), nil
}

func (x *Cache) Mark(ctx context.Context, key string, ttl time.Duration) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	now := time.Now()
	x.keys[key] = now.Add(ttl)

	// Drop expired keys opportunistically to bound memory
	for k, expire := range x.keys {
		if now.After(expire) {
			delete(x.keys, k)
		}
	}

	return nil
}
