package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	redisclient "github.com/yungbote/dailylesson-backend/internal/clients/redis"
	"github.com/yungbote/dailylesson-backend/internal/data/db"
	"github.com/yungbote/dailylesson-backend/internal/platform/gcp"
	"github.com/yungbote/dailylesson-backend/internal/platform/heygen"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
	"github.com/yungbote/dailylesson-backend/internal/temporalx"
)

// Clients holds connections to external systems. Optional ones are nil when
// not configured.
type Clients struct {
	DB       *db.Service
	Redis    *goredis.Client
	Temporal temporalsdkclient.Client
	HeyGen   heygen.Client
	Media    gcp.MediaBucket
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	// Database
	dbs, err := db.NewService(log, cfg.DB)
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		return Clients{}, fmt.Errorf("database automigrate: %w", err)
	}
	c.DB = dbs

	// Redis
	rdb, err := redisclient.NewClient(log, cfg.Redis)
	if err != nil {
		c.Close()
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	c.Redis = rdb

	// Temporal
	if cfg.Temporal.Enabled() {
		tc, err := temporalx.NewClient(log, cfg.Temporal)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init temporal: %w", err)
		}
		c.Temporal = tc
	}

	// HeyGen
	hg, err := heygen.NewClient(log, cfg.HeyGen)
	switch {
	case errors.Is(err, heygen.ErrMissingAPIKey):
		log.Info("HEYGEN_API_KEY not set; video rendering disabled in this process")
	case err != nil:
		c.Close()
		return Clients{}, fmt.Errorf("init heygen: %w", err)
	default:
		c.HeyGen = hg
	}

	// Gcs
	if cfg.Media.Enabled() {
		bucket, err := gcp.NewMediaBucket(ctx, log, cfg.Media)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init media bucket: %w", err)
		}
		c.Media = bucket
	}

	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
