package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/dailylesson-backend/internal/http/handlers"
	httpMW "github.com/yungbote/dailylesson-backend/internal/http/middleware"
	"github.com/yungbote/dailylesson-backend/internal/observability"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	// ServiceName enables otelgin spans when non-empty.
	ServiceName    string
	AllowedOrigins []string
	CMSToken       string

	LessonHandler  *httpH.LessonHandler
	CMSHandler     *httpH.CMSHandler
	WebhookHandler *httpH.WebhookHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Lessons
	if cfg.LessonHandler != nil {
		r.GET("/lesson", cfg.LessonHandler.GetLesson)
		r.GET("/lesson/:variationKey", cfg.LessonHandler.GetVariation)
	}

	v1 := r.Group("/v1")
	{
		if cfg.LessonHandler != nil {
			v1.GET("/daily-lesson", cfg.LessonHandler.GetDailyLesson)
			v1.GET("/lessons", cfg.LessonHandler.ListVariations)
			v1.GET("/lessons/:variationKey/cards/:scriptNumber", cfg.LessonHandler.GetTitleCard)
		}

		if cfg.WebhookHandler != nil {
			v1.POST("/webhooks/heygen", cfg.WebhookHandler.HeyGen)
		}
	}

	cms := v1.Group("/cms")
	{
		cms.Use(httpMW.RequireBearer(cfg.CMSToken))

		if cfg.CMSHandler != nil {
			cms.GET("/lesson-dna/:lessonId", cfg.CMSHandler.GetDNA)
			cms.POST("/lesson-dna", cfg.CMSHandler.SaveDNA)
			cms.POST("/render", cfg.CMSHandler.Rerender)
		}
	}

	return r
}
