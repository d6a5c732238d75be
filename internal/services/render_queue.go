package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

// RenderQueue accepts render jobs for asynchronous processing.
type RenderQueue interface {
	Submit(ctx context.Context, job domain.RenderJob) (domain.RenderReceipt, error)
}

// LogRenderQueue accepts every job and only logs it. Used when no render
// backend is configured.
type LogRenderQueue struct {
	log *logger.Logger
}

func NewLogRenderQueue(baseLog *logger.Logger) *LogRenderQueue {
	return &LogRenderQueue{log: baseLog.With("queue", "LogRenderQueue")}
}

func (q *LogRenderQueue) Submit(_ context.Context, job domain.RenderJob) (domain.RenderReceipt, error) {
	id := job.JobID
	if id == "" {
		id = uuid.NewString()
	}
	q.log.Info("Render job accepted (log only)", "variation_key", job.VariationKey, "job_id", id, "segments", len(job.Scripts))
	return domain.RenderReceipt{Accepted: true, JobID: id}, nil
}

const RedisRenderListKey = "lesson:render:jobs"

// RedisRenderQueue pushes jobs onto a Redis list consumed by the render worker.
type RedisRenderQueue struct {
	rdb goredis.UniversalClient
	key string
	log *logger.Logger
}

func NewRedisRenderQueue(rdb goredis.UniversalClient, baseLog *logger.Logger) *RedisRenderQueue {
	return &RedisRenderQueue{rdb: rdb, key: RedisRenderListKey, log: baseLog.With("queue", "RedisRenderQueue")}
}

func (q *RedisRenderQueue) Submit(ctx context.Context, job domain.RenderJob) (domain.RenderReceipt, error) {
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return domain.RenderReceipt{}, fmt.Errorf("marshal render job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, raw).Err(); err != nil {
		return domain.RenderReceipt{}, fmt.Errorf("push render job: %w", err)
	}
	q.log.Debug("Render job queued", "variation_key", job.VariationKey, "job_id", job.JobID)
	return domain.RenderReceipt{Accepted: true, JobID: job.JobID}, nil
}
