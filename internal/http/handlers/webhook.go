package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/http/response"
	rendermod "github.com/yungbote/dailylesson-backend/internal/modules/render"
	"github.com/yungbote/dailylesson-backend/internal/platform/apierr"
	"github.com/yungbote/dailylesson-backend/internal/platform/ctxutil"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

// MediaFinalizer records a finished video after confirming it with the
// provider. render.Usecases satisfies it.
type MediaFinalizer interface {
	FinalizeVideo(ctx context.Context, variationKey, videoID string) (string, error)
}

type WebhookHandler struct {
	log   *logger.Logger
	media MediaFinalizer
}

func NewWebhookHandler(baseLog *logger.Logger, media MediaFinalizer) *WebhookHandler {
	return &WebhookHandler{
		log:   baseLog.With("handler", "WebhookHandler"),
		media: media,
	}
}

// heygenCallback carries the variation key in lesson_id; variation_key is
// accepted as an alias. VideoURL is logged only; the recorded URL comes from
// the provider's status for VideoID.
type heygenCallback struct {
	VideoID      string `json:"video_id"`
	Status       string `json:"status"`
	VideoURL     string `json:"video_url"`
	LessonID     string `json:"lesson_id"`
	VariationKey string `json:"variation_key"`
}

// POST /v1/webhooks/heygen
func (h *WebhookHandler) HeyGen(c *gin.Context) {
	var body heygenCallback
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondErr(c, errInvalidBody)
		return
	}
	key := strings.TrimSpace(body.VariationKey)
	if key == "" {
		key = strings.TrimSpace(body.LessonID)
	}
	videoID := strings.TrimSpace(body.VideoID)
	ctxutil.SetVariationKey(c.Request.Context(), key)

	if body.Status == "completed" && videoID != "" && key != "" {
		if _, err := h.media.FinalizeVideo(c.Request.Context(), key, videoID); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.log.Warn("Webhook for unknown variation", "variation_key", key, "video_id", videoID)
			case errors.Is(err, rendermod.ErrNotCompleted), errors.Is(err, rendermod.ErrVideoFailed):
				h.log.Warn("Webhook video not completed at provider", "variation_key", key, "video_id", videoID, "claimed_url", body.VideoURL)
			default:
				h.log.Error("Webhook media update failed", "error", err, "variation_key", key, "video_id", videoID)
				response.RespondErr(c, apierr.Internal(err))
				return
			}
		} else {
			h.log.Info("Webhook video recorded", "variation_key", key, "video_id", videoID)
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
