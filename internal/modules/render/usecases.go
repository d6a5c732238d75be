package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/gcp"
	"github.com/yungbote/dailylesson-backend/internal/platform/heygen"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

// MediaStore records finished media on a stored variation. Get returns
// nil, nil for an unknown key.
type MediaStore interface {
	Get(ctx context.Context, key string) (*domain.LessonVariation, error)
	UpdateMediaURLs(ctx context.Context, key string, audioURL, videoURL *string) error
}

type UsecasesDeps struct {
	Log    *logger.Logger
	Video  heygen.Client
	Media  MediaStore
	Bucket gcp.MediaBucket // optional; provider URLs are stored as-is without it
	// CallbackURL is passed to HeyGen so completion also arrives by webhook.
	CallbackURL string
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "Render")
	return Usecases{deps: deps}
}

var (
	ErrVideoFailed  = errors.New("video render failed")
	ErrPollBudget   = errors.New("video render did not finish in time")
	ErrNoScriptText = errors.New("render job has no voice text")
	ErrNotCompleted = errors.New("video is not completed")
)

const (
	DefaultPollInterval = 30 * time.Second
	DefaultPollBudget   = 30 * time.Minute
)

// ScriptText joins the segments' voice texts in script order.
func ScriptText(job domain.RenderJob) string {
	parts := make([]string, 0, len(job.Scripts))
	for _, s := range job.Scripts {
		if t := strings.TrimSpace(s.VoiceText); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Submit starts a provider render and returns its video id.
func (u Usecases) Submit(ctx context.Context, job domain.RenderJob) (string, error) {
	if u.deps.Video == nil {
		return "", errors.New("render: no video provider configured")
	}
	text := ScriptText(job)
	if text == "" {
		return "", ErrNoScriptText
	}
	id, err := u.deps.Video.Generate(ctx, heygen.GenerateRequest{
		AvatarID:    heygen.AvatarFor(job.Age, job.Tone),
		VoiceID:     heygen.VoiceFor(job.Language, job.Tone),
		Text:        text,
		Title:       job.VariationKey,
		CallbackURL: u.deps.CallbackURL,
	})
	if err != nil {
		return "", fmt.Errorf("submit %s: %w", job.VariationKey, err)
	}
	u.deps.Log.Info("Render submitted", "variation_key", job.VariationKey, "video_id", id)
	return id, nil
}

// Check polls once. A failed render is returned as ErrVideoFailed.
func (u Usecases) Check(ctx context.Context, videoID string) (*heygen.Video, error) {
	v, err := u.deps.Video.Status(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if v.Status == heygen.StatusFailed {
		msg := "unknown error"
		if v.Error != nil && v.Error.Message != "" {
			msg = v.Error.Message
		}
		return v, fmt.Errorf("%w: %s: %s", ErrVideoFailed, videoID, msg)
	}
	return v, nil
}

// Await polls until the video completes, fails, or budget elapses.
func (u Usecases) Await(ctx context.Context, videoID string, interval, budget time.Duration) (*heygen.Video, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if budget <= 0 {
		budget = DefaultPollBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		v, err := u.Check(ctx, videoID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", ErrPollBudget, videoID)
			}
			if errors.Is(err, ErrVideoFailed) {
				return v, err
			}
			u.deps.Log.Warn("Render status check failed; will retry", "video_id", videoID, "error", err)
		} else if v.Status == heygen.StatusCompleted {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrPollBudget, videoID)
		case <-tick.C:
		}
	}
}

// ObjectKey is where a variation's video lives in the media bucket.
func ObjectKey(variationKey string) string {
	k, err := domain.ParseKey(variationKey)
	if err != nil {
		return "lessons/misc/" + strings.NewReplacer(":", "_", "/", "_").Replace(variationKey) + ".mp4"
	}
	return fmt.Sprintf("lessons/%s/%s/%d_%s_%s.mp4", k.LessonID, k.Date.Format(domain.DateLayout), k.Age, k.Tone, k.Language)
}

// Finalize mirrors videoURL into the media bucket when one is configured
// and records the final URL on the variation. Unknown keys are rejected
// before anything is written to the bucket.
func (u Usecases) Finalize(ctx context.Context, variationKey, videoURL string) (string, error) {
	if strings.TrimSpace(videoURL) == "" {
		return "", errors.New("render: completed video has no url")
	}
	v, err := u.deps.Media.Get(ctx, variationKey)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", domain.VariationNotFound(variationKey)
	}
	final := videoURL
	if u.deps.Bucket != nil {
		mirrored, err := u.deps.Bucket.MirrorFromURL(ctx, videoURL, ObjectKey(variationKey))
		if err != nil {
			return "", fmt.Errorf("mirror %s: %w", variationKey, err)
		}
		final = mirrored
	}
	if err := u.deps.Media.UpdateMediaURLs(ctx, variationKey, nil, &final); err != nil {
		return "", err
	}
	u.deps.Log.Info("Variation media recorded", "variation_key", variationKey)
	return final, nil
}

// FinalizeVideo looks videoID up with the provider and finalizes the URL the
// provider reports. URLs carried in callback bodies are never mirrored.
func (u Usecases) FinalizeVideo(ctx context.Context, variationKey, videoID string) (string, error) {
	if u.deps.Video == nil {
		return "", errors.New("render: no video provider configured")
	}
	if strings.TrimSpace(videoID) == "" {
		return "", fmt.Errorf("%w: empty video id", ErrNotCompleted)
	}
	v, err := u.Check(ctx, videoID)
	if err != nil {
		return "", err
	}
	if v.Status != heygen.StatusCompleted || strings.TrimSpace(v.VideoURL) == "" {
		return "", fmt.Errorf("%w: %s is %s", ErrNotCompleted, videoID, v.Status)
	}
	return u.Finalize(ctx, variationKey, v.VideoURL)
}

// Run executes the whole pipeline in-process.
func (u Usecases) Run(ctx context.Context, job domain.RenderJob, interval, budget time.Duration) (string, error) {
	id, err := u.Submit(ctx, job)
	if err != nil {
		return "", err
	}
	v, err := u.Await(ctx, id, interval, budget)
	if err != nil {
		return "", err
	}
	return u.Finalize(ctx, job.VariationKey, v.VideoURL)
}
