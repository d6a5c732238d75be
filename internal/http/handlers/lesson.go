package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dailylesson-backend/internal/data/store"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/http/response"
	"github.com/yungbote/dailylesson-backend/internal/platform/ctxutil"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
	"github.com/yungbote/dailylesson-backend/internal/services"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// CardRenderer is satisfied by *services.CardRenderer.
type CardRenderer interface {
	Render(v *domain.LessonVariation, scriptNumber int) (bytes.Buffer, error)
}

type LessonHandler struct {
	log      *logger.Logger
	resolver services.LessonResolver
	cards    CardRenderer
}

func NewLessonHandler(baseLog *logger.Logger, resolver services.LessonResolver, cards CardRenderer) *LessonHandler {
	return &LessonHandler{
		log:      baseLog.With("handler", "LessonHandler"),
		resolver: resolver,
		cards:    cards,
	}
}

// GET /lesson?lessonId&date&age&tone&language
func (h *LessonHandler) GetLesson(c *gin.Context) {
	req, err := resolveRequestFromQuery(c, "lessonId", "date")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if req.LessonID == "" {
		response.RespondErr(c, domain.ErrMissingParameters)
		return
	}
	h.respondResolution(c, func(ctx context.Context) (*services.Resolution, error) {
		return h.resolver.Resolve(ctx, req)
	})
}

// GET /v1/daily-lesson?age&tone&language&lesson_date
func (h *LessonHandler) GetDailyLesson(c *gin.Context) {
	req, err := resolveRequestFromQuery(c, "", "lesson_date")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	h.respondResolution(c, func(ctx context.Context) (*services.Resolution, error) {
		return h.resolver.ResolveDaily(ctx, req)
	})
}

func (h *LessonHandler) respondResolution(c *gin.Context, resolve func(context.Context) (*services.Resolution, error)) {
	res, err := resolve(c.Request.Context())
	if err != nil {
		if status := response.RespondErr(c, err); status >= http.StatusInternalServerError {
			h.log.Error("Lesson resolution failed", "error", err)
		}
		return
	}
	ctxutil.SetVariationKey(c.Request.Context(), res.Key)
	if res.CacheHit {
		c.Header("X-Cache", "hit")
	} else {
		c.Header("X-Cache", "miss")
	}
	response.RespondOK(c, res.Variation)
}

// GET /lesson/:variationKey
func (h *LessonHandler) GetVariation(c *gin.Context) {
	ctxutil.SetVariationKey(c.Request.Context(), c.Param("variationKey"))
	v, err := h.resolver.GetByKey(c.Request.Context(), c.Param("variationKey"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, v)
}

// GET /v1/lessons?lesson_id&date&limit&offset
func (h *LessonHandler) ListVariations(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultListLimit)
	if err != nil || limit <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", errInvalidQuery("limit"))
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_offset", errInvalidQuery("offset"))
		return
	}
	f := store.ListFilter{
		LessonID: strings.TrimSpace(c.Query("lesson_id")),
		Date:     strings.TrimSpace(c.Query("date")),
		Limit:    limit,
		Offset:   offset,
	}
	if f.Date != "" {
		if _, err := domain.ParseDate(f.Date); err != nil {
			response.RespondErr(c, domain.ErrInvalidDate)
			return
		}
	}
	items, total, err := h.resolver.List(c.Request.Context(), f)
	if err != nil {
		h.log.Error("List variations failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	if items == nil {
		items = []*domain.LessonVariation{}
	}
	response.RespondOK(c, gin.H{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GET /v1/lessons/:variationKey/cards/:scriptNumber
func (h *LessonHandler) GetTitleCard(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("scriptNumber"))
	if err != nil || n <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_script_number", errInvalidQuery("scriptNumber"))
		return
	}
	v, err := h.resolver.GetByKey(c.Request.Context(), c.Param("variationKey"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if h.cards == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "cards_disabled", errCardsDisabled)
		return
	}
	buf, err := h.cards.Render(v, n)
	if err != nil {
		if status := response.RespondErr(c, err); status >= http.StatusInternalServerError {
			h.log.Error("Title card render failed", "error", err, "variation_key", v.Key)
		}
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// resolveRequestFromQuery reads the shared age/tone/language parameters. An
// empty lessonParam skips the lesson id.
func resolveRequestFromQuery(c *gin.Context, lessonParam, dateParam string) (services.ResolveRequest, error) {
	req := services.ResolveRequest{
		Date:     strings.TrimSpace(c.Query(dateParam)),
		Tone:     strings.TrimSpace(c.Query("tone")),
		Language: strings.TrimSpace(c.Query("language")),
	}
	if lessonParam != "" {
		req.LessonID = strings.TrimSpace(c.Query(lessonParam))
	}
	rawAge := strings.TrimSpace(c.Query("age"))
	if rawAge == "" || req.Tone == "" || req.Language == "" {
		return req, domain.ErrMissingParameters
	}
	age, err := strconv.Atoi(rawAge)
	if err != nil {
		return req, domain.ErrInvalidAge
	}
	req.Age = age
	return req, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
