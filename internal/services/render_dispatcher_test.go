package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type countingQueue struct {
	mu    sync.Mutex
	jobs  []domain.RenderJob
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (q *countingQueue) Submit(ctx context.Context, job domain.RenderJob) (domain.RenderReceipt, error) {
	q.calls.Add(1)
	if q.block != nil {
		select {
		case <-q.block:
		case <-ctx.Done():
			return domain.RenderReceipt{}, ctx.Err()
		}
	}
	if q.err != nil {
		return domain.RenderReceipt{}, q.err
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	return domain.RenderReceipt{Accepted: true, JobID: "job-" + job.VariationKey}, nil
}

func (q *countingQueue) submitted() []domain.RenderJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.RenderJob(nil), q.jobs...)
}

func renderVariation(age int) *domain.LessonVariation {
	key, _ := domain.BuildKey("acoustics_july11_192", time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC), age, domain.ToneFun, "english")
	return &domain.LessonVariation{
		Key:      key.String(),
		LessonID: key.LessonID,
		Scripts:  []domain.ScriptSegment{{ScriptNumber: 1, ScriptType: domain.ScriptOpening, VoiceText: "hi"}},
	}
}

func TestRenderDispatcherSubmitsInBackground(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := &countingQueue{}
	d := NewRenderDispatcher(q, logger.Nop(), nil, RenderDispatcherConfig{})
	d.Dispatch(context.Background(), renderVariation(8))
	d.Dispatch(context.Background(), renderVariation(30))

	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	jobs := q.submitted()
	if len(jobs) != 2 {
		t.Fatalf("submitted jobs: got=%d want=2", len(jobs))
	}
	for _, j := range jobs {
		if j.Tone != domain.ToneFun || j.Language != "english" || len(j.Scripts) != 1 {
			t.Fatalf("unexpected job: %+v", j)
		}
	}

	// Closed dispatchers drop work rather than leak goroutines.
	d.Dispatch(context.Background(), renderVariation(40))
	if got := q.calls.Load(); got != 2 {
		t.Fatalf("dispatch after close reached queue: calls=%d", got)
	}
}

func TestRenderDispatcherTimesOutSlowQueue(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := &countingQueue{block: make(chan struct{})}
	d := NewRenderDispatcher(q, logger.Nop(), nil, RenderDispatcherConfig{SubmitTimeout: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	d.Dispatch(ctx, renderVariation(8))
	// Request cancellation must not abort the submission early.
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer closeCancel()
	if err := d.Close(closeCtx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(q.submitted()) != 0 {
		t.Fatalf("blocked queue should not record a job")
	}
}

func TestRenderDispatcherBreakerOpens(t *testing.T) {
	q := &countingQueue{err: errors.New("queue down")}
	d := NewRenderDispatcher(q, logger.Nop(), nil, RenderDispatcherConfig{MinRequests: 2, FailureRatio: 0.5, OpenTimeout: time.Minute})
	job, err := domain.NewRenderJob(renderVariation(8))
	if err != nil {
		t.Fatalf("NewRenderJob: %v", err)
	}
	for i := 0; i < 2; i++ {
		_, err := d.Submit(context.Background(), job)
		var qe *domain.QueueingError
		if !errors.As(err, &qe) || qe.VariationKey != job.VariationKey {
			t.Fatalf("submit %d: expected QueueingError, got %v", i, err)
		}
	}
	if _, err := d.Submit(context.Background(), job); err == nil {
		t.Fatalf("expected breaker to reject")
	}
	if got := q.calls.Load(); got != 2 {
		t.Fatalf("open breaker should not call the queue: calls=%d", got)
	}
}

func TestLogRenderQueueAccepts(t *testing.T) {
	job, _ := domain.NewRenderJob(renderVariation(8))
	r, err := NewLogRenderQueue(logger.Nop()).Submit(context.Background(), job)
	if err != nil || !r.Accepted || r.JobID == "" {
		t.Fatalf("receipt=%+v err=%v", r, err)
	}
}
