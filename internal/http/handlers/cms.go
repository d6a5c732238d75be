package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dailylesson-backend/internal/data/dnastore"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/http/response"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
	"github.com/yungbote/dailylesson-backend/internal/services"
)

// DNAWriter is the CMS-owned DNA table. *dnastore.RepoStore satisfies it.
type DNAWriter interface {
	Load(ctx context.Context, lessonID string) (*domain.LessonDNA, error)
	Save(ctx context.Context, dna *domain.LessonDNA) error
}

// Invalidator drops cached DNA after a CMS write.
type Invalidator interface {
	Invalidate()
}

type CMSHandler struct {
	log      *logger.Logger
	dna      DNAWriter
	cache    Invalidator
	resolver services.LessonResolver
}

func NewCMSHandler(baseLog *logger.Logger, dna DNAWriter, cache Invalidator, resolver services.LessonResolver) *CMSHandler {
	return &CMSHandler{
		log:      baseLog.With("handler", "CMSHandler"),
		dna:      dna,
		cache:    cache,
		resolver: resolver,
	}
}

// GET /v1/cms/lesson-dna/:lessonId
func (h *CMSHandler) GetDNA(c *gin.Context) {
	id := strings.TrimSpace(c.Param("lessonId"))
	dna, err := h.dna.Load(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Load lesson DNA failed", "error", err, "lesson_id", id)
		response.RespondErr(c, err)
		return
	}
	if dna == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New("Lesson DNA not found"))
		return
	}
	response.RespondOK(c, dna)
}

// POST /v1/cms/lesson-dna
func (h *CMSHandler) SaveDNA(c *gin.Context) {
	var dna domain.LessonDNA
	if err := c.ShouldBindJSON(&dna); err != nil {
		response.RespondErr(c, errInvalidBody)
		return
	}
	if err := h.dna.Save(c.Request.Context(), &dna); err != nil {
		if errors.Is(err, dnastore.ErrInvalidDNA) {
			response.RespondError(c, http.StatusBadRequest, "invalid_dna", err)
			return
		}
		h.log.Error("Save lesson DNA failed", "error", err, "lesson_id", dna.ID)
		response.RespondError(c, http.StatusInternalServerError, "save_failed", errors.New("Failed to save lesson DNA"))
		return
	}
	if h.cache != nil {
		h.cache.Invalidate()
	}
	h.log.Info("Lesson DNA saved", "lesson_id", dna.ID, "day_of_year", dna.DayOfYear)
	c.JSON(http.StatusCreated, gin.H{"success": true, "lesson_id": dna.ID})
}

type rerenderRequest struct {
	VariationKey string `json:"variation_key"`
}

// POST /v1/cms/render
func (h *CMSHandler) Rerender(c *gin.Context) {
	var req rerenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, errInvalidBody)
		return
	}
	key := strings.TrimSpace(req.VariationKey)
	if key == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_parameters", errors.New("variation_key is required"))
		return
	}
	receipt, err := h.resolver.Rerender(c.Request.Context(), key)
	if err != nil {
		if status := response.RespondErr(c, err); status >= http.StatusInternalServerError {
			h.log.Warn("Rerender failed", "error", err, "variation_key", key)
		}
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": receipt.Accepted, "job_id": receipt.JobID})
}
