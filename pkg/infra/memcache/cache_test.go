package memcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/caselog-dev/caselog/pkg/infra/memcache"
)

func TestSeen(t *testing.T) {
	ctx := context.Background()
	cache := memcache.New()

	t.Run("unmarked key is not seen", func(t *testing.T) {
		seen := gt.R1(cache.Seen(ctx, "key-1")).NoError(t)
		gt.False(t, seen)
	})

	t.Run("marked key within TTL is seen", func(t *testing.T) {
		gt.NoError(t, cache.Mark(ctx, "key-1", time.Minute))

		seen := gt.R1(cache.Seen(ctx, "key-1")).NoError(t)
		gt.True(t, seen)
	})

	t.Run("different key is not seen", func(t *testing.T) {
		seen := gt.R1(cache.Seen(ctx, "key-2")).NoError(t)
		gt.False(t, seen)
	})

	t.Run("expired key is not seen", func(t *testing.T) {
		gt.NoError(t, cache.Mark(ctx, "key-3", time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		seen := gt.R1(cache.Seen(ctx, "key-3")).NoError(t)
		gt.False(t, seen)
	})
}
