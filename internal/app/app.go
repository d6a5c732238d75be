package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	server "github.com/yungbote/dailylesson-backend/internal/http"
	"github.com/yungbote/dailylesson-backend/internal/observability"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

// Core is everything but the HTTP surface. The API server, render worker
// and pregeneration CLI all build on it.
type Core struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
}

func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func NewCore(ctx context.Context, log *logger.Logger) (*Core, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		m, err := observability.NewMetrics()
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		metrics = m
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	repos := wireRepos(clients.DB.DB(), log)
	svc, err := wireServices(log, cfg, clients, repos, metrics)
	if err != nil {
		clients.Close()
		return nil, err
	}
	return &Core{
		Log:      log,
		Cfg:      cfg,
		Clients:  clients,
		Repos:    repos,
		Services: svc,
		Metrics:  metrics,
	}, nil
}

// Close drains pending render dispatches, then closes clients.
func (c *Core) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Services.Dispatcher != nil {
		if err := c.Services.Dispatcher.Close(ctx); err != nil {
			c.Log.Warn("Render dispatcher did not drain", "error", err)
		}
	}
	c.Clients.Close()
}

type App struct {
	*Core
	Router *gin.Engine

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}
	core, err := NewCore(ctx, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: core.Cfg.ServiceName,
		Environment: core.Cfg.Environment,
	})

	handlerset := wireHandlers(log, core.Clients, core.Services)
	router := wireRouter(log, core.Cfg, handlerset, core.Metrics, shutdown != nil)

	return &App{
		Core:         core,
		Router:       router,
		otelShutdown: shutdown,
	}, nil
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return (&server.Server{Engine: a.Router}).Serve(ctx, addr, a.Cfg.ShutdownGrace)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Core.Close(ctx)
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
