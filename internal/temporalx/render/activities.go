package render

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	rendermod "github.com/yungbote/dailylesson-backend/internal/modules/render"
	"github.com/yungbote/dailylesson-backend/internal/platform/heygen"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type Activities struct {
	Log    *logger.Logger
	Render rendermod.Usecases
}

func (a *Activities) Submit(ctx context.Context, job domain.RenderJob) (string, error) {
	id, err := a.Render.Submit(ctx, job)
	if errors.Is(err, rendermod.ErrNoScriptText) {
		return "", temporal.NewNonRetryableApplicationError(err.Error(), "empty_script", err)
	}
	var he *heygen.HTTPError
	if errors.As(err, &he) && he.StatusCode >= 400 && he.StatusCode < 500 && he.StatusCode != 429 {
		return "", temporal.NewNonRetryableApplicationError(err.Error(), "provider_rejected", err)
	}
	return id, err
}

// Check reports provider status. A failed render is a result, not an error,
// so the workflow can stop without retrying the activity.
func (a *Activities) Check(ctx context.Context, videoID string) (CheckResult, error) {
	v, err := a.Render.Check(ctx, videoID)
	if errors.Is(err, rendermod.ErrVideoFailed) {
		return CheckResult{VideoID: videoID, Status: string(heygen.StatusFailed), Error: err.Error()}, nil
	}
	if err != nil {
		return CheckResult{}, err
	}
	return CheckResult{VideoID: videoID, Status: string(v.Status), VideoURL: v.VideoURL}, nil
}

func (a *Activities) Finalize(ctx context.Context, in FinalizeInput) (string, error) {
	url, err := a.Render.Finalize(ctx, in.VariationKey, in.VideoURL)
	if errors.Is(err, domain.ErrNotFound) {
		return "", temporal.NewNonRetryableApplicationError(err.Error(), "variation_not_found", err)
	}
	return url, err
}
