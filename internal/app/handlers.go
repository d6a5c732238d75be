package app

import (
	"context"

	temporalsdkclient "go.temporal.io/sdk/client"

	httpH "github.com/yungbote/dailylesson-backend/internal/http/handlers"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Lesson  *httpH.LessonHandler
	CMS     *httpH.CMSHandler
	Webhook *httpH.WebhookHandler
}

func wireHandlers(log *logger.Logger, clients Clients, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(readinessChecks(clients)...),
		Lesson:  httpH.NewLessonHandler(log, svc.Resolver, svc.Cards),
		CMS:     httpH.NewCMSHandler(log, svc.DNARepo, svc.DNA, svc.Resolver),
		Webhook: httpH.NewWebhookHandler(log, svc.Render),
	}
}

func readinessChecks(c Clients) []httpH.DependencyCheck {
	var checks []httpH.DependencyCheck
	if c.DB != nil {
		checks = append(checks, httpH.DependencyCheck{Name: "database", Ping: c.DB.Ping})
	}
	if c.Redis != nil {
		checks = append(checks, httpH.DependencyCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		}})
	}
	if c.Temporal != nil {
		checks = append(checks, httpH.DependencyCheck{Name: "temporal", Ping: func(ctx context.Context) error {
			_, err := c.Temporal.CheckHealth(ctx, &temporalsdkclient.CheckHealthRequest{})
			return err
		}})
	}
	return checks
}
