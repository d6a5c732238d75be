package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

var validationMessages = map[string]string{
	"invalid_age":           "age must be a whole number within the supported range",
	"invalid_tone":          "tone must be one of: fun, grandmother, neutral",
	"invalid_language":      "language must be a lowercase language name such as english",
	"invalid_date":          "date must be formatted YYYY-MM-DD",
	"missing_parameters":    "missing required query parameters",
	"invalid_variation_key": "variation key must be lessonId:YYYY-MM-DD:age:tone:language",
}

// Classify maps an error to its HTTP status, code and client-safe message.
func Classify(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msg, ok := validationMessages[ve.Code]
		if !ok {
			msg = ve.Error()
		}
		return apierr.Wrap(http.StatusBadRequest, ve.Code, msg, err)
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return apierr.NotFound(nf.Resource, nf)
	}
	var se *domain.SynthesisError
	if errors.As(err, &se) {
		return apierr.Wrap(http.StatusInternalServerError, apierr.CodeSynthesisFailed, "lesson content could not be assembled", err)
	}
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return apierr.Wrap(http.StatusInternalServerError, apierr.CodeStorageUnavailable, "lesson storage is temporarily unavailable", err)
	}
	var qe *domain.QueueingError
	if errors.As(err, &qe) {
		return apierr.Wrap(http.StatusBadGateway, apierr.CodeQueueFailed, "render queue rejected the job", err)
	}
	return apierr.Internal(err)
}

// RespondErr writes the envelope for err and reports its status.
func RespondErr(c *gin.Context, err error) int {
	ae := Classify(err)
	RespondError(c, ae.Status, ae.Code, ae)
	return ae.Status
}
