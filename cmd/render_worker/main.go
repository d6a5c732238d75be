package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/dailylesson-backend/internal/app"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/jobs/worker"
	rendermod "github.com/yungbote/dailylesson-backend/internal/modules/render"
	"github.com/yungbote/dailylesson-backend/internal/platform/envutil"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
	"github.com/yungbote/dailylesson-backend/internal/services"
	"github.com/yungbote/dailylesson-backend/internal/temporalx/temporalworker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := app.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(ctx, log); err != nil {
		log.Error("Render worker exited", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	core, err := app.NewCore(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		core.Close(closeCtx)
	}()
	if core.Clients.HeyGen == nil {
		return errors.New("render worker requires HEYGEN_API_KEY")
	}

	switch {
	case core.Clients.Temporal != nil:
		runner, err := temporalworker.NewRunner(log, core.Clients.Temporal, core.Cfg.Temporal, core.Services.Render)
		if err != nil {
			return err
		}
		if err := runner.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		log.Info("Temporal render worker stopping")
		return nil

	case core.Clients.Redis != nil:
		interval := envutil.Seconds("RENDER_POLL_INTERVAL_SECONDS", rendermod.DefaultPollInterval)
		budget := envutil.Seconds("RENDER_POLL_BUDGET_SECONDS", rendermod.DefaultPollBudget)
		render := core.Services.Render
		handle := func(ctx context.Context, job domain.RenderJob) error {
			_, err := render.Run(ctx, job, interval, budget)
			return err
		}
		source := worker.NewRedisSource(core.Clients.Redis, services.RedisRenderListKey, 5*time.Second)
		w := worker.NewWorker(log, source, handle, envutil.Int("WORKER_CONCURRENCY", 2))
		w.Start(ctx)
		log.Info("Redis render worker started", "queue", services.RedisRenderListKey)
		<-ctx.Done()
		w.Wait()
		return nil

	default:
		return errors.New("render worker requires TEMPORAL_ADDRESS or REDIS_ADDR")
	}
}
