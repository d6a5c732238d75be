package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/dailylesson-backend/internal/platform/envutil"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func LoadConfig() Config {
	return Config{
		Addr:     envutil.String("REDIS_ADDR", ""),
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
	}
}

// NewClient dials and pings Redis. It returns nil, nil when no address is
// configured so callers can run without a cache.
func NewClient(log *logger.Logger, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		log.Info("REDIS_ADDR not set; running without Redis")
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Redis connected", "addr", cfg.Addr, "db", cfg.DB)
	return rdb, nil
}
