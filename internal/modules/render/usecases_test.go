package render

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/heygen"
)

type fakeVideo struct {
	mu       sync.Mutex
	req      heygen.GenerateRequest
	statuses []heygen.VideoStatus
	polls    int
}

func (f *fakeVideo) Generate(_ context.Context, req heygen.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.req = req
	return "vid-1", nil
}

func (f *fakeVideo) Status(_ context.Context, id string) (*heygen.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.statuses[min(f.polls, len(f.statuses)-1)]
	f.polls++
	v := &heygen.Video{ID: id, Status: s}
	if s == heygen.StatusCompleted {
		v.VideoURL = "https://files.heygen.ai/vid-1.mp4"
	}
	return v, nil
}

type fakeMedia struct {
	missing bool
	key     string
	video   string
}

func (m *fakeMedia) Get(_ context.Context, key string) (*domain.LessonVariation, error) {
	if m.missing {
		return nil, nil
	}
	return &domain.LessonVariation{Key: key}, nil
}

func (m *fakeMedia) UpdateMediaURLs(_ context.Context, key string, _ *string, videoURL *string) error {
	m.key, m.video = key, *videoURL
	return nil
}

type fakeBucket struct{ mirrored string }

func (b *fakeBucket) Upload(context.Context, string, io.Reader) error { return nil }
func (b *fakeBucket) MirrorFromURL(_ context.Context, _ string, key string) (string, error) {
	b.mirrored = key
	return "https://cdn.ilearn.how/" + key, nil
}
func (b *fakeBucket) GetPublicURL(key string) string { return "https://cdn.ilearn.how/" + key }

const testKey = "acoustics_july11_192:2024-07-11:8:fun:english"

func testJob() domain.RenderJob {
	return domain.RenderJob{
		VariationKey: testKey,
		LessonID:     "acoustics_july11_192",
		Age:          8,
		Tone:         domain.ToneFun,
		Language:     "english",
		Scripts: []domain.ScriptSegment{
			{ScriptNumber: 1, VoiceText: "Hello."},
			{ScriptNumber: 2, VoiceText: "  "},
			{ScriptNumber: 3, VoiceText: "Goodbye."},
		},
	}
}

func TestRunMirrorsAndRecords(t *testing.T) {
	video := &fakeVideo{statuses: []heygen.VideoStatus{heygen.StatusProcessing, heygen.StatusCompleted}}
	media := &fakeMedia{}
	bucket := &fakeBucket{}
	u := New(UsecasesDeps{Video: video, Media: media, Bucket: bucket})

	url, err := u.Run(context.Background(), testJob(), time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantKey := "lessons/acoustics_july11_192/2024-07-11/8_fun_english.mp4"
	if bucket.mirrored != wantKey || url != "https://cdn.ilearn.how/"+wantKey {
		t.Fatalf("mirror: key=%q url=%q", bucket.mirrored, url)
	}
	if media.key != testKey || media.video != url {
		t.Fatalf("media update: %+v", media)
	}
	if video.req.Text != "Hello.\n\nGoodbye." || video.req.AvatarID != heygen.AvatarFor(8, domain.ToneFun) {
		t.Fatalf("generate request: %+v", video.req)
	}
}

func TestAwaitFailureAndBudget(t *testing.T) {
	u := New(UsecasesDeps{Video: &fakeVideo{statuses: []heygen.VideoStatus{heygen.StatusFailed}}, Media: &fakeMedia{}})
	if _, err := u.Await(context.Background(), "vid-1", time.Millisecond, time.Second); !errors.Is(err, ErrVideoFailed) {
		t.Fatalf("expected ErrVideoFailed, got %v", err)
	}

	u = New(UsecasesDeps{Video: &fakeVideo{statuses: []heygen.VideoStatus{heygen.StatusProcessing}}, Media: &fakeMedia{}})
	if _, err := u.Await(context.Background(), "vid-1", time.Millisecond, 20*time.Millisecond); !errors.Is(err, ErrPollBudget) {
		t.Fatalf("expected ErrPollBudget, got %v", err)
	}
}

func TestSubmitRejectsEmptyScript(t *testing.T) {
	u := New(UsecasesDeps{Video: &fakeVideo{}, Media: &fakeMedia{}})
	job := testJob()
	job.Scripts = nil
	if _, err := u.Submit(context.Background(), job); !errors.Is(err, ErrNoScriptText) {
		t.Fatalf("got %v", err)
	}
}

func TestFinalizeUnknownVariationWritesNothing(t *testing.T) {
	media := &fakeMedia{missing: true}
	bucket := &fakeBucket{}
	u := New(UsecasesDeps{Video: &fakeVideo{statuses: []heygen.VideoStatus{heygen.StatusCompleted}}, Media: media, Bucket: bucket})

	if _, err := u.Finalize(context.Background(), "nope:2024-07-11:8:fun:english", "https://files.heygen.ai/vid-1.mp4"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Finalize unknown key: got %v", err)
	}
	if _, err := u.FinalizeVideo(context.Background(), "nope:2024-07-11:8:fun:english", "vid-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FinalizeVideo unknown key: got %v", err)
	}
	if bucket.mirrored != "" || media.video != "" {
		t.Fatalf("unknown key reached storage: mirrored=%q video=%q", bucket.mirrored, media.video)
	}
}

func TestFinalizeVideoUsesProviderURL(t *testing.T) {
	media := &fakeMedia{}
	u := New(UsecasesDeps{Video: &fakeVideo{statuses: []heygen.VideoStatus{heygen.StatusCompleted}}, Media: media})

	url, err := u.FinalizeVideo(context.Background(), testKey, "vid-1")
	if err != nil {
		t.Fatalf("FinalizeVideo: %v", err)
	}
	if url != "https://files.heygen.ai/vid-1.mp4" || media.video != url || media.key != testKey {
		t.Fatalf("recorded url=%q media=%+v", url, media)
	}
}

func TestFinalizeVideoRejectsUnfinished(t *testing.T) {
	media := &fakeMedia{}
	bucket := &fakeBucket{}
	u := New(UsecasesDeps{Video: &fakeVideo{statuses: []heygen.VideoStatus{heygen.StatusProcessing}}, Media: media, Bucket: bucket})

	if _, err := u.FinalizeVideo(context.Background(), testKey, "vid-1"); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("processing video: got %v", err)
	}
	if _, err := u.FinalizeVideo(context.Background(), testKey, " "); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("empty video id: got %v", err)
	}

	u = New(UsecasesDeps{Video: &fakeVideo{statuses: []heygen.VideoStatus{heygen.StatusFailed}}, Media: media, Bucket: bucket})
	if _, err := u.FinalizeVideo(context.Background(), testKey, "vid-1"); !errors.Is(err, ErrVideoFailed) {
		t.Fatalf("failed video: got %v", err)
	}
	if bucket.mirrored != "" || media.video != "" {
		t.Fatalf("unfinished video reached storage: mirrored=%q video=%q", bucket.mirrored, media.video)
	}
}
