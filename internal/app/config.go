package app

import (
	"strings"
	"time"

	redisclient "github.com/yungbote/dailylesson-backend/internal/clients/redis"
	"github.com/yungbote/dailylesson-backend/internal/data/db"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/envutil"
	"github.com/yungbote/dailylesson-backend/internal/platform/gcp"
	"github.com/yungbote/dailylesson-backend/internal/platform/heygen"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
	"github.com/yungbote/dailylesson-backend/internal/services"
	"github.com/yungbote/dailylesson-backend/internal/temporalx"
)

const (
	RenderQueueTemporal = "temporal"
	RenderQueueRedis    = "redis"
	RenderQueueLog      = "log"
)

type Config struct {
	Port        string
	Environment string
	ServiceName string

	AgeRange          domain.AgeRange
	DNADir            string
	DNACacheSize      int
	DNACacheTTL       time.Duration
	VariationCacheTTL time.Duration
	LockEnabled       bool

	// RenderQueue is temporal, redis or log. Empty picks the first backend
	// that is configured.
	RenderQueue string
	Dispatcher  services.RenderDispatcherConfig

	PublicBaseURL  string
	AllowedOrigins []string
	CMSToken       string
	CardFont       string
	MetricsEnabled bool
	ShutdownGrace  time.Duration

	DB       db.Config
	Redis    redisclient.Config
	Temporal temporalx.Config
	HeyGen   heygen.Config
	Media    gcp.MediaConfig
}

func LoadConfig(log *logger.Logger) Config {
	dispatch := services.DefaultRenderDispatcherConfig()
	dispatch.SubmitTimeout = envutil.Millis("RENDER_SUBMIT_TIMEOUT_MS", dispatch.SubmitTimeout)

	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("ENVIRONMENT", "development"),
		ServiceName: envutil.String("SERVICE_NAME", "dailylesson-api"),

		AgeRange: domain.AgeRange{
			Min: envutil.Int("LESSON_MIN_AGE", domain.DefaultAgeRange().Min),
			Max: envutil.Int("LESSON_MAX_AGE", domain.DefaultAgeRange().Max),
		},
		DNADir:            envutil.String("DNA_DIR", ""),
		DNACacheSize:      envutil.Int("DNA_CACHE_SIZE", 256),
		DNACacheTTL:       envutil.Seconds("DNA_CACHE_TTL_SECONDS", 5*time.Minute),
		VariationCacheTTL: envutil.Seconds("VARIATION_CACHE_TTL_SECONDS", 24*time.Hour),
		LockEnabled:       envutil.Bool("LESSON_LOCK_ENABLED", true),

		RenderQueue: strings.ToLower(envutil.String("RENDER_QUEUE", "")),
		Dispatcher:  dispatch,

		PublicBaseURL:  strings.TrimRight(envutil.String("PUBLIC_BASE_URL", ""), "/"),
		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
		CMSToken:       envutil.String("CMS_API_TOKEN", ""),
		CardFont:       envutil.String("CARD_FONT", ""),
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		ShutdownGrace:  envutil.Seconds("SHUTDOWN_GRACE_SECONDS", 15*time.Second),

		DB:       db.LoadConfig(),
		Redis:    redisclient.LoadConfig(),
		Temporal: temporalx.LoadConfig(),
		HeyGen:   heygen.LoadConfig(),
		Media:    gcp.LoadMediaConfig(),
	}
	if cfg.AgeRange.Min > cfg.AgeRange.Max {
		log.Warn("LESSON_MIN_AGE exceeds LESSON_MAX_AGE; using defaults", "min", cfg.AgeRange.Min, "max", cfg.AgeRange.Max)
		cfg.AgeRange = domain.DefaultAgeRange()
	}
	if cfg.CMSToken == "" {
		log.Warn("CMS_API_TOKEN not set; CMS routes are unauthenticated")
	}
	return cfg
}

// CallbackURL is where HeyGen reports finished renders, if the service is
// publicly reachable.
func (c Config) CallbackURL() string {
	if c.PublicBaseURL == "" {
		return ""
	}
	return c.PublicBaseURL + "/v1/webhooks/heygen"
}
