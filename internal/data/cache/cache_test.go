package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

func testRedis(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestVariationCacheRoundTrip(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	c := NewVariationCache(rdb, time.Minute, logger.Nop())

	key := "cache_test_" + uuid.NewString()[:8] + ":2024-07-11:8:fun:english"
	if got, err := c.Get(ctx, key); err != nil || got != nil {
		t.Fatalf("Get miss: got=%v err=%v", got, err)
	}
	v := &domain.LessonVariation{Key: key, LessonID: "cache_test", Metadata: domain.LessonMetadata{Title: "t"}}
	if err := c.Set(ctx, v); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, key)
	if err != nil || got == nil || got.Metadata.Title != "t" {
		t.Fatalf("Get hit: got=%v err=%v", got, err)
	}
	if ttl := rdb.TTL(ctx, variationKey(key)).Val(); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl: %s", ttl)
	}
	if err := c.Add(ctx, &domain.LessonVariation{Key: key, Metadata: domain.LessonMetadata{Title: "older"}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got, _ := c.Get(ctx, key); got == nil || got.Metadata.Title != "t" {
		t.Fatalf("Add should not replace an existing entry: %v", got)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := c.Get(ctx, key); got != nil {
		t.Fatalf("Get after delete: %v", got)
	}

	rdb.Set(ctx, variationKey(key), "{not json", time.Minute)
	if got, err := c.Get(ctx, key); err != nil || got != nil {
		t.Fatalf("corrupt entry should read as miss: got=%v err=%v", got, err)
	}
}

func TestRedisLockerExclusive(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	l := NewRedisLocker(rdb)
	name := "lock_test_" + uuid.NewString()

	first, err := l.TryAcquire(ctx, name, 5*time.Second)
	if err != nil || first == nil {
		t.Fatalf("first acquire: lease=%v err=%v", first, err)
	}
	second, err := l.TryAcquire(ctx, name, 5*time.Second)
	if err != nil || second != nil {
		t.Fatalf("second acquire should fail: lease=%v err=%v", second, err)
	}

	stale := &Lease{rdb: rdb, key: lockPrefix + name, token: "not-mine"}
	if err := stale.Release(ctx); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if second, _ := l.TryAcquire(ctx, name, 5*time.Second); second != nil {
		t.Fatalf("stale release must not free another holder's lock")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	third, err := l.TryAcquire(ctx, name, 5*time.Second)
	if err != nil || third == nil {
		t.Fatalf("acquire after release: lease=%v err=%v", third, err)
	}
	_ = third.Release(ctx)
}
