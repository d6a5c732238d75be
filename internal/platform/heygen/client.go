package heygen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yungbote/dailylesson-backend/internal/platform/envutil"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://api.heygen.com"

type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func LoadConfig() Config {
	return Config{
		APIKey:     envutil.String("HEYGEN_API_KEY", ""),
		BaseURL:    strings.TrimRight(envutil.String("HEYGEN_BASE_URL", DefaultBaseURL), "/"),
		Timeout:    envutil.Seconds("HEYGEN_TIMEOUT_SECONDS", 30*time.Second),
		MaxRetries: envutil.Int("HEYGEN_MAX_RETRIES", 3),
	}
}

type VideoStatus string

const (
	StatusPending    VideoStatus = "pending"
	StatusWaiting    VideoStatus = "waiting"
	StatusProcessing VideoStatus = "processing"
	StatusCompleted  VideoStatus = "completed"
	StatusFailed     VideoStatus = "failed"
)

func (s VideoStatus) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

type GenerateRequest struct {
	AvatarID string
	VoiceID  string
	Text     string
	// Callback receives the completion webhook when set.
	CallbackURL string
	// Title tags the video in the HeyGen dashboard.
	Title string
}

type Video struct {
	ID           string      `json:"video_id"`
	Status       VideoStatus `json:"status"`
	VideoURL     string      `json:"video_url"`
	ThumbnailURL string      `json:"thumbnail_url"`
	Duration     float64     `json:"duration"`
	Error        *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the HeyGen video API.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Status(ctx context.Context, videoID string) (*Video, error)
}

var ErrMissingAPIKey = errors.New("heygen: missing HEYGEN_API_KEY")

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("heygen http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	breaker    *gobreaker.CircuitBreaker
	sleep      func(time.Duration)
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	clientLog := log.With("client", "HeyGen")
	return &client{
		log:        clientLog,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "heygen",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				clientLog.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
			// Caller mistakes should not trip the breaker.
			IsSuccessful: func(err error) bool {
				var he *HTTPError
				if errors.As(err, &he) {
					return !he.retryable()
				}
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
		sleep: time.Sleep,
	}, nil
}

type generatePayload struct {
	VideoInputs []videoInput `json:"video_inputs"`
	AspectRatio string       `json:"aspect_ratio"`
	Dimension   dimension    `json:"dimension"`
	Title       string       `json:"title,omitempty"`
	CallbackURL string       `json:"callback_url,omitempty"`
}

type videoInput struct {
	Character struct {
		Type     string `json:"type"`
		AvatarID string `json:"avatar_id"`
	} `json:"character"`
	Voice struct {
		Type      string `json:"type"`
		InputText string `json:"input_text"`
		VoiceID   string `json:"voice_id"`
	} `json:"voice"`
}

type dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (c *client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", errors.New("heygen: empty script text")
	}
	var in videoInput
	in.Character.Type = "avatar"
	in.Character.AvatarID = req.AvatarID
	in.Voice.Type = "text"
	in.Voice.InputText = req.Text
	in.Voice.VoiceID = req.VoiceID
	payload := generatePayload{
		VideoInputs: []videoInput{in},
		AspectRatio: "16:9",
		Dimension:   dimension{Width: 1920, Height: 1080},
		Title:       req.Title,
		CallbackURL: req.CallbackURL,
	}
	var out struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Data struct {
			VideoID string `json:"video_id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/video/generate", payload, &out); err != nil {
		return "", err
	}
	if out.Data.VideoID == "" {
		msg := "no video_id in response"
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("heygen generate: %s", msg)
	}
	return out.Data.VideoID, nil
}

func (c *client) Status(ctx context.Context, videoID string) (*Video, error) {
	var out struct {
		Data Video `json:"data"`
	}
	path := "/v1/video_status.get?video_id=" + videoID
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Data.ID == "" {
		out.Data.ID = videoID
	}
	return &out.Data, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := time.Second
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.doOnce(ctx, method, path, body, out)
		})
		if err == nil {
			return nil
		}
		var he *HTTPError
		retry := errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
		if errors.As(err, &he) {
			retry = he.retryable()
		}
		if !retry || attempt == c.maxRetries {
			return err
		}
		c.log.Warn("HeyGen request retrying", "path", path, "attempt", attempt+1, "max_retries", c.maxRetries, "sleep", backoff.String(), "error", err.Error())
		c.sleep(backoff)
		backoff *= 2
	}
	return fmt.Errorf("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("heygen decode error: %w", err)
	}
	return nil
}
