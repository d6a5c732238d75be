package render

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	rendermod "github.com/yungbote/dailylesson-backend/internal/modules/render"
	"github.com/yungbote/dailylesson-backend/internal/platform/heygen"
)

// Workflow submits the script, polls until the provider finishes or the
// budget runs out, then records the video on the variation.
func Workflow(ctx workflow.Context, job domain.RenderJob, opts Options) (Result, error) {
	res := Result{VariationKey: job.VariationKey}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = rendermod.DefaultPollInterval
	}
	budget := opts.PollBudget
	if budget <= 0 {
		budget = rendermod.DefaultPollBudget
	}
	log := workflow.GetLogger(ctx)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	})

	if err := workflow.ExecuteActivity(ctx, ActivitySubmit, job).Get(ctx, &res.VideoID); err != nil {
		return res, err
	}

	deadline := workflow.Now(ctx).Add(budget)
	for {
		if err := workflow.Sleep(ctx, interval); err != nil {
			return res, err
		}
		var out CheckResult
		if err := workflow.ExecuteActivity(ctx, ActivityCheck, res.VideoID).Get(ctx, &out); err != nil {
			return res, err
		}
		switch heygen.VideoStatus(out.Status) {
		case heygen.StatusCompleted:
			fctx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
				StartToCloseTimeout: 15 * time.Minute,
				RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
			})
			if err := workflow.ExecuteActivity(fctx, ActivityFinalize, FinalizeInput{
				VariationKey: job.VariationKey,
				VideoURL:     out.VideoURL,
			}).Get(fctx, &res.VideoURL); err != nil {
				return res, err
			}
			log.Info("Lesson render complete", "variation_key", job.VariationKey, "video_id", res.VideoID)
			return res, nil
		case heygen.StatusFailed:
			return res, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("render failed for %s: %s", job.VariationKey, out.Error), "video_failed", nil)
		}
		if workflow.Now(ctx).After(deadline) {
			return res, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("render for %s still %s after %s", job.VariationKey, out.Status, budget), "poll_budget", nil)
		}
	}
}
