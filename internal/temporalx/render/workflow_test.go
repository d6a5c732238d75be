package render

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	rendermod "github.com/yungbote/dailylesson-backend/internal/modules/render"
	"github.com/yungbote/dailylesson-backend/internal/platform/heygen"
)

type scriptedVideo struct {
	mu       sync.Mutex
	statuses []heygen.VideoStatus
	polls    int
}

func (v *scriptedVideo) Generate(context.Context, heygen.GenerateRequest) (string, error) {
	return "vid-42", nil
}

func (v *scriptedVideo) Status(_ context.Context, id string) (*heygen.Video, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.statuses[min(v.polls, len(v.statuses)-1)]
	v.polls++
	out := &heygen.Video{ID: id, Status: s}
	if s == heygen.StatusCompleted {
		out.VideoURL = "https://files.heygen.ai/vid-42.mp4"
	}
	return out, nil
}

type recordingMedia struct {
	mu    sync.Mutex
	key   string
	video string
}

func (m *recordingMedia) Get(_ context.Context, key string) (*domain.LessonVariation, error) {
	return &domain.LessonVariation{Key: key}, nil
}

func (m *recordingMedia) UpdateMediaURLs(_ context.Context, key string, _ *string, videoURL *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key, m.video = key, *videoURL
	return nil
}

func newEnv(t *testing.T, statuses ...heygen.VideoStatus) (*testsuite.TestWorkflowEnvironment, *recordingMedia) {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	media := &recordingMedia{}
	acts := &Activities{Render: rendermod.New(rendermod.UsecasesDeps{
		Video: &scriptedVideo{statuses: statuses},
		Media: media,
	})}
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	env.RegisterActivityWithOptions(acts.Submit, activity.RegisterOptions{Name: ActivitySubmit})
	env.RegisterActivityWithOptions(acts.Check, activity.RegisterOptions{Name: ActivityCheck})
	env.RegisterActivityWithOptions(acts.Finalize, activity.RegisterOptions{Name: ActivityFinalize})
	return env, media
}

func renderJob() domain.RenderJob {
	return domain.RenderJob{
		VariationKey: "acoustics_july11_192:2024-07-11:8:fun:english",
		LessonID:     "acoustics_july11_192",
		Age:          8,
		Tone:         domain.ToneFun,
		Language:     "english",
		Scripts:      []domain.ScriptSegment{{ScriptNumber: 1, VoiceText: "Hey there!"}},
	}
}

func TestWorkflowRecordsCompletedVideo(t *testing.T) {
	env, media := newEnv(t, heygen.StatusPending, heygen.StatusProcessing, heygen.StatusCompleted)
	env.ExecuteWorkflow(WorkflowName, renderJob(), Options{PollInterval: time.Second, PollBudget: time.Hour})

	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res Result
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.VideoID != "vid-42" || res.VideoURL != "https://files.heygen.ai/vid-42.mp4" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if media.key != renderJob().VariationKey || media.video != res.VideoURL {
		t.Fatalf("media not recorded: %+v", media)
	}
}

func TestWorkflowStopsOnProviderFailure(t *testing.T) {
	env, media := newEnv(t, heygen.StatusFailed)
	env.ExecuteWorkflow(WorkflowName, renderJob(), Options{PollInterval: time.Second})
	if env.GetWorkflowError() == nil {
		t.Fatalf("expected workflow error")
	}
	if media.key != "" {
		t.Fatalf("failed render must not record media")
	}
}

func TestWorkflowGivesUpAfterBudget(t *testing.T) {
	env, _ := newEnv(t, heygen.StatusProcessing)
	env.ExecuteWorkflow(WorkflowName, renderJob(), Options{PollInterval: time.Minute, PollBudget: 5 * time.Minute})
	if !env.IsWorkflowCompleted() || env.GetWorkflowError() == nil {
		t.Fatalf("expected budget failure")
	}
}
