package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/apierr"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidAge, http.StatusBadRequest, "invalid_age"},
		{fmt.Errorf("wrap: %w", domain.ErrMalformedKey), http.StatusBadRequest, "invalid_variation_key"},
		{domain.LessonNotFound("x"), http.StatusNotFound, "lesson_not_found"},
		{domain.VariationNotFound("k"), http.StatusNotFound, "variation_not_found"},
		{domain.MissingAgeExpression("x", domain.Youth), http.StatusInternalServerError, "synthesis_failed"},
		{domain.Storage("get", errors.New("conn refused")), http.StatusInternalServerError, "storage_unavailable"},
		{&domain.QueueingError{VariationKey: "k", Err: errors.New("down")}, http.StatusBadGateway, "queue_failed"},
		{apierr.New(http.StatusTeapot, "teapot", errors.New("short and stout")), http.StatusTeapot, "teapot"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		got := Classify(tc.err)
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("%v: got status=%d code=%q", tc.err, got.Status, got.Code)
		}
	}
}

func TestRespondErrHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	status := RespondErr(c, domain.Storage("get", errors.New("dial tcp 10.0.0.5:5432: refused")))
	if status != http.StatusInternalServerError || rec.Code != status {
		t.Fatalf("status: %d/%d", status, rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil || env.Error.Code != "storage_unavailable" {
		t.Fatalf("envelope: %+v err=%v", env, err)
	}
}
