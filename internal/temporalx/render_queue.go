package temporalx

import (
	"context"
	"errors"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
	"github.com/yungbote/dailylesson-backend/internal/temporalx/render"
)

// RenderQueue starts one render workflow per variation.
type RenderQueue struct {
	tc        temporalsdkclient.Client
	taskQueue string
	opts      render.Options
	log       *logger.Logger
}

func NewRenderQueue(tc temporalsdkclient.Client, cfg Config, opts render.Options, baseLog *logger.Logger) *RenderQueue {
	return &RenderQueue{tc: tc, taskQueue: cfg.TaskQueue, opts: opts, log: baseLog.With("queue", "TemporalRenderQueue")}
}

// WorkflowID is deterministic per variation, so repeated dispatches join the
// existing run. Jobs with an explicit JobID get their own run.
func WorkflowID(job domain.RenderJob) string {
	if job.JobID != "" {
		return "render:" + job.VariationKey + ":" + job.JobID
	}
	return "render:" + job.VariationKey
}

func (q *RenderQueue) Submit(ctx context.Context, job domain.RenderJob) (domain.RenderReceipt, error) {
	id := WorkflowID(job)
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    id,
		TaskQueue:             q.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		WorkflowRunTimeout:    2 * time.Hour,
	}
	run, err := q.tc.ExecuteWorkflow(ctx, opts, render.WorkflowName, job, q.opts)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			q.log.Debug("Render workflow already exists", "workflow_id", id)
			return domain.RenderReceipt{Accepted: true, JobID: id}, nil
		}
		return domain.RenderReceipt{}, fmt.Errorf("start render workflow: %w", err)
	}
	q.log.Info("Render workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return domain.RenderReceipt{Accepted: true, JobID: run.GetID()}, nil
}
