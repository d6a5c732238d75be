package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/observability"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type RenderDispatcherConfig struct {
	SubmitTimeout time.Duration
	// Breaker trips after MinRequests submissions in an Interval window
	// with at least FailureRatio failing, and stays open for OpenTimeout.
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	OpenTimeout  time.Duration
}

func DefaultRenderDispatcherConfig() RenderDispatcherConfig {
	return RenderDispatcherConfig{
		SubmitTimeout: 3 * time.Second,
		MinRequests:   5,
		FailureRatio:  0.6,
		Interval:      30 * time.Second,
		OpenTimeout:   60 * time.Second,
	}
}

// RenderDispatcher submits render jobs in the background. Dispatch never
// blocks the caller and never returns an error; failures become logged
// QueueingErrors.
type RenderDispatcher struct {
	queue   RenderQueue
	log     *logger.Logger
	metrics *observability.Metrics
	cfg     RenderDispatcherConfig
	breaker *gobreaker.CircuitBreaker

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRenderDispatcher(queue RenderQueue, baseLog *logger.Logger, metrics *observability.Metrics, cfg RenderDispatcherConfig) *RenderDispatcher {
	def := DefaultRenderDispatcherConfig()
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = def.SubmitTimeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = def.MinRequests
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = def.FailureRatio
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	log := baseLog.With("service", "RenderDispatcher")
	d := &RenderDispatcher{queue: queue, log: log, metrics: metrics, cfg: cfg}
	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "render_submit",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return d
}

// Dispatch queues a render for v. ctx supplies request-scoped values only;
// its cancellation does not abort the submission.
func (d *RenderDispatcher) Dispatch(ctx context.Context, v *domain.LessonVariation) {
	job, err := domain.NewRenderJob(v)
	if err != nil {
		d.log.Error("Cannot build render job", "variation_key", v.Key, "error", err)
		d.metrics.RenderSubmit("error")
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("Render dispatcher closed; dropping job", "variation_key", v.Key)
		d.metrics.RenderSubmit("dropped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	d.metrics.RenderPending(1)
	go func() {
		defer d.wg.Done()
		defer d.metrics.RenderPending(-1)
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.SubmitTimeout)
		defer cancel()
		if _, err := d.Submit(sctx, job); err != nil {
			d.log.Warn("Render submission failed", "variation_key", job.VariationKey, "error", err)
		}
	}()
}

// Submit runs one submission synchronously through the breaker.
func (d *RenderDispatcher) Submit(ctx context.Context, job domain.RenderJob) (domain.RenderReceipt, error) {
	out, err := d.breaker.Execute(func() (interface{}, error) {
		r, err := d.queue.Submit(ctx, job)
		if err != nil {
			return nil, err
		}
		if !r.Accepted {
			return r, errRenderRejected
		}
		return r, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			d.metrics.RenderSubmit("breaker_open")
		case errors.Is(err, errRenderRejected):
			d.metrics.RenderSubmit("rejected")
		default:
			d.metrics.RenderSubmit("error")
		}
		return domain.RenderReceipt{}, &domain.QueueingError{VariationKey: job.VariationKey, Err: err}
	}
	receipt := out.(domain.RenderReceipt)
	d.metrics.RenderSubmit("accepted")
	d.log.Info("Render job submitted", "variation_key", job.VariationKey, "job_id", receipt.JobID)
	return receipt, nil
}

var errRenderRejected = errors.New("render job rejected")

// Close stops accepting work and waits for in-flight submissions or ctx.
func (d *RenderDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
