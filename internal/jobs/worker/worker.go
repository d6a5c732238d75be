package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

// Source yields queued render jobs. Next returns nil, nil when nothing
// arrived within its poll window.
type Source interface {
	Next(ctx context.Context) (*domain.RenderJob, error)
	Fail(ctx context.Context, job domain.RenderJob, cause error) error
}

type Handler func(ctx context.Context, job domain.RenderJob) error

// Worker runs a pool of goroutines draining a Source.
type Worker struct {
	log         *logger.Logger
	source      Source
	handle      Handler
	concurrency int
	wg          sync.WaitGroup
}

func NewWorker(baseLog *logger.Logger, source Source, handle Handler, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		log:         baseLog.With("component", "RenderWorker"),
		source:      source,
		handle:      handle,
		concurrency: concurrency,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting render worker pool", "concurrency", w.concurrency)
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.runLoop(ctx, i+1)
	}
}

// Wait blocks until every loop has exited after ctx is done.
func (w *Worker) Wait() { w.wg.Wait() }

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	defer w.wg.Done()
	for {
		if ctx.Err() != nil {
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		}
		job, err := w.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Warn("Fetching render job failed", "worker_id", workerID, "error", err)
			sleepCtx(ctx, time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if err := w.run(ctx, workerID, *job); err != nil {
			w.log.Warn("Render job failed", "worker_id", workerID, "variation_key", job.VariationKey, "error", err)
			if ferr := w.source.Fail(context.WithoutCancel(ctx), *job, err); ferr != nil {
				w.log.Error("Recording failed render job failed", "variation_key", job.VariationKey, "error", ferr)
			}
		}
	}
}

func (w *Worker) run(ctx context.Context, workerID int, job domain.RenderJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Render handler panic", "worker_id", workerID, "variation_key", job.VariationKey, "panic", r)
			err = &panicError{Val: r}
		}
	}()
	return w.handle(ctx, job)
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

const DeadLetterKey = "lesson:render:failed"

// RedisSource pops jobs pushed by the API's redis render queue.
type RedisSource struct {
	rdb     goredis.UniversalClient
	key     string
	timeout time.Duration
}

func NewRedisSource(rdb goredis.UniversalClient, key string, timeout time.Duration) *RedisSource {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &RedisSource{rdb: rdb, key: key, timeout: timeout}
}

func (s *RedisSource) Next(ctx context.Context) (*domain.RenderJob, error) {
	res, err := s.rdb.BRPop(ctx, s.timeout, s.key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BRPOP yields [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(res))
	}
	var job domain.RenderJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		_ = s.rdb.LPush(ctx, DeadLetterKey, res[1]).Err()
		return nil, fmt.Errorf("decode render job: %w", err)
	}
	return &job, nil
}

type failedJob struct {
	Job      domain.RenderJob `json:"job"`
	Error    string           `json:"error"`
	FailedAt time.Time        `json:"failed_at"`
}

func (s *RedisSource) Fail(ctx context.Context, job domain.RenderJob, cause error) error {
	raw, err := json.Marshal(failedJob{Job: job, Error: cause.Error(), FailedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.rdb.LPush(ctx, DeadLetterKey, raw).Err()
}
