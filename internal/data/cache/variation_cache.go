package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/dailylesson-backend/internal/data/store"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

const variationPrefix = "lesson:variation:"

var _ store.Cache = (*VariationCache)(nil)

// VariationCache keeps serialized variations in Redis under a TTL.
type VariationCache struct {
	rdb goredis.UniversalClient
	ttl time.Duration
	log *logger.Logger
}

func NewVariationCache(rdb goredis.UniversalClient, ttl time.Duration, baseLog *logger.Logger) *VariationCache {
	return &VariationCache{
		rdb: rdb,
		ttl: ttl,
		log: baseLog.With("cache", "VariationCache"),
	}
}

func variationKey(key string) string { return variationPrefix + key }

func (c *VariationCache) Get(ctx context.Context, key string) (*domain.LessonVariation, error) {
	raw, err := c.rdb.Get(ctx, variationKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Storage("cache_get", err)
	}
	var v domain.LessonVariation
	if err := json.Unmarshal(raw, &v); err != nil {
		// A corrupt entry is treated as a miss and evicted.
		c.log.Warn("Dropping undecodable cache entry", "variation_key", key, "error", err)
		_ = c.rdb.Del(ctx, variationKey(key)).Err()
		return nil, nil
	}
	return &v, nil
}

func (c *VariationCache) Set(ctx context.Context, v *domain.LessonVariation) error {
	raw, err := encodeVariation(v)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, variationKey(v.Key), raw, c.ttl).Err(); err != nil {
		return domain.Storage("cache_set", err)
	}
	return nil
}

// Add is SET NX: an existing entry wins.
func (c *VariationCache) Add(ctx context.Context, v *domain.LessonVariation) error {
	raw, err := encodeVariation(v)
	if err != nil {
		return err
	}
	if err := c.rdb.SetNX(ctx, variationKey(v.Key), raw, c.ttl).Err(); err != nil {
		return domain.Storage("cache_add", err)
	}
	return nil
}

func encodeVariation(v *domain.LessonVariation) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("nil variation")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal variation: %w", err)
	}
	return raw, nil
}

func (c *VariationCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, variationKey(key)).Err(); err != nil {
		return domain.Storage("cache_delete", err)
	}
	return nil
}
