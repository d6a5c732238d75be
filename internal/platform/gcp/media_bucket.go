package gcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/dailylesson-backend/internal/platform/envutil"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

type MediaConfig struct {
	Bucket       string
	CDNDomain    string
	Mode         StorageMode
	EmulatorHost string
}

func LoadMediaConfig() MediaConfig {
	return MediaConfig{
		Bucket:       envutil.String("MEDIA_GCS_BUCKET", ""),
		CDNDomain:    envutil.String("MEDIA_CDN_DOMAIN", ""),
		Mode:         StorageMode(strings.ToLower(envutil.String("OBJECT_STORAGE_MODE", string(StorageModeGCS)))),
		EmulatorHost: strings.TrimRight(envutil.String("STORAGE_EMULATOR_HOST", ""), "/"),
	}
}

func (c MediaConfig) Enabled() bool { return strings.TrimSpace(c.Bucket) != "" }

// MediaBucket stores rendered lesson media and builds public URLs for it.
type MediaBucket interface {
	Upload(ctx context.Context, key string, r io.Reader) error
	MirrorFromURL(ctx context.Context, srcURL, key string) (string, error)
	GetPublicURL(key string) string
}

type mediaBucket struct {
	log    *logger.Logger
	client *storage.Client
	http   *http.Client
	cfg    MediaConfig
}

func NewMediaBucket(ctx context.Context, log *logger.Logger, cfg MediaConfig) (MediaBucket, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing env var MEDIA_GCS_BUCKET")
	}
	serviceLog := log.With("service", "MediaBucket")
	var opts []option.ClientOption
	switch cfg.Mode {
	case StorageModeGCS:
		opts = append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	case StorageModeGCSEmulator:
		if cfg.EmulatorHost == "" {
			return nil, fmt.Errorf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", cfg.Mode)
		}
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		opts = []option.ClientOption{option.WithoutAuthentication()}
	default:
		return nil, fmt.Errorf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", cfg.Mode, StorageModeGCS, StorageModeGCSEmulator)
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog.Info("Media bucket initialized", "bucket", cfg.Bucket, "mode", cfg.Mode, "cdn_domain", cfg.CDNDomain)
	return &mediaBucket{
		log:    serviceLog,
		client: client,
		http:   &http.Client{Timeout: 10 * time.Minute},
		cfg:    cfg,
	}, nil
}

func (b *mediaBucket) Upload(ctx context.Context, key string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	w := b.client.Bucket(b.cfg.Bucket).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// MirrorFromURL streams srcURL into the bucket and returns the public URL.
func (b *mediaBucket) MirrorFromURL(ctx context.Context, srcURL, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", redactQuery(srcURL), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: http %d", redactQuery(srcURL), resp.StatusCode)
	}
	if err := b.Upload(ctx, key, resp.Body); err != nil {
		return "", err
	}
	b.log.Info("Mirrored media", "key", key)
	return b.GetPublicURL(key), nil
}

func (b *mediaBucket) GetPublicURL(key string) string {
	return PublicURL(b.cfg, key)
}

func PublicURL(cfg MediaConfig, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	}
	if cfg.Mode == StorageModeGCSEmulator && cfg.EmulatorHost != "" {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", cfg.EmulatorHost, url.PathEscape(cfg.Bucket), url.PathEscape(key))
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Bucket, key)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	default:
		return ""
	}
}

// Provider URLs carry signed query strings.
func redactQuery(raw string) string {
	if i := strings.Index(raw, "?"); i >= 0 {
		return raw[:i]
	}
	return raw
}
