package heygen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.Handler) *client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 2})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	cl := c.(*client)
	cl.sleep = func(time.Duration) {}
	return cl
}

func TestGenerateSendsAvatarPayload(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/video/generate" || r.Header.Get("X-Api-Key") != "k" {
			t.Errorf("unexpected request %s key=%q", r.URL.Path, r.Header.Get("X-Api-Key"))
		}
		var body generatePayload
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(body.VideoInputs) != 1 || body.VideoInputs[0].Voice.InputText != "hello" || body.Dimension.Width != 1920 {
			t.Errorf("unexpected payload: %+v", body)
		}
		_, _ = w.Write([]byte(`{"data":{"video_id":"vid-1"}}`))
	}))
	id, err := c.Generate(context.Background(), GenerateRequest{AvatarID: "a", VoiceID: "v", Text: "hello"})
	if err != nil || id != "vid-1" {
		t.Fatalf("Generate: id=%q err=%v", id, err)
	}
}

func TestStatusRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.URL.Query().Get("video_id") != "vid-1" {
			t.Errorf("missing video_id query")
		}
		_, _ = w.Write([]byte(`{"data":{"status":"completed","video_url":"https://cdn/v.mp4"}}`))
	}))
	v, err := c.Status(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if v.Status != StatusCompleted || !v.Status.Terminal() || v.VideoURL != "https://cdn/v.mp4" || v.ID != "vid-1" {
		t.Fatalf("unexpected video: %+v", v)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls: got=%d want=2", calls.Load())
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	_, err := c.Generate(context.Background(), GenerateRequest{Text: "x"})
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls: got=%d want=1", calls.Load())
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("got %v", err)
	}
}

func TestCasting(t *testing.T) {
	if got := AvatarFor(8, domain.ToneFun); got != "31806751c28d420aa3ac4263ce2fbc5f" {
		t.Fatalf("young fun avatar: %s", got)
	}
	if got := AvatarFor(40, domain.ToneGrandmother); got != "d9df6b91a63b42cf8eb20268065953b6" {
		t.Fatalf("adult grandmother avatar: %s", got)
	}
	if got := VoiceFor("English", domain.ToneFun); got != "2EiwWnXFnvU5JabPnv8n" {
		t.Fatalf("english fun voice: %s", got)
	}
	if got := VoiceFor("klingon", domain.ToneFun); got != "21m00Tcm4TlvDq8ikWAM" {
		t.Fatalf("fallback voice: %s", got)
	}
	t.Setenv("HEYGEN_VOICE_SPANISH_FUN", "es-fun")
	if got := VoiceFor("spanish", domain.ToneFun); got != "es-fun" {
		t.Fatalf("env voice override: %s", got)
	}
}
