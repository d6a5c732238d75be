package app

import (
	"github.com/gin-gonic/gin"

	server "github.com/yungbote/dailylesson-backend/internal/http"
	"github.com/yungbote/dailylesson-backend/internal/observability"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, h Handlers, metrics *observability.Metrics, tracing bool) *gin.Engine {
	log.Info("Wiring router...")
	rc := server.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		CMSToken:       cfg.CMSToken,
		LessonHandler:  h.Lesson,
		CMSHandler:     h.CMS,
		WebhookHandler: h.Webhook,
		HealthHandler:  h.Health,
	}
	if tracing {
		rc.ServiceName = cfg.ServiceName
	}
	return server.NewRouter(rc)
}
