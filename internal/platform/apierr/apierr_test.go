package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	err := Wrap(http.StatusInternalServerError, CodeStorageUnavailable, "lesson storage is temporarily unavailable", cause)
	if err.Error() != "lesson storage is temporarily unavailable" {
		t.Fatalf("message leaked cause: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause should stay reachable through Unwrap")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("lesson", errors.New("no dna for x")))
	if !errors.Is(err, &Error{Code: "lesson_not_found"}) {
		t.Fatalf("expected code match for %v", err)
	}
	if errors.Is(err, &Error{Code: "variation_not_found"}) {
		t.Fatalf("different code should not match")
	}
	if errors.Is(err, &Error{}) {
		t.Fatalf("empty code should not match")
	}
	var ae *Error
	if !errors.As(err, &ae) || ae.Status != http.StatusNotFound {
		t.Fatalf("As: %+v", ae)
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   string
		msg    string
	}{
		{BadRequest("invalid_age", "age out of range"), http.StatusBadRequest, "invalid_age", "age out of range"},
		{NotFound("variation", nil), http.StatusNotFound, "variation_not_found", "variation not found"},
		{Internal(errors.New("nil map")), http.StatusInternalServerError, CodeInternal, "internal error"},
		{New(http.StatusTeapot, "teapot", nil), http.StatusTeapot, "teapot", "teapot"},
		{&Error{Status: http.StatusBadGateway}, http.StatusBadGateway, "", "api error (502)"},
	}
	for _, tc := range cases {
		if tc.err.Status != tc.status || tc.err.Code != tc.code || tc.err.Error() != tc.msg {
			t.Fatalf("got status=%d code=%q msg=%q, want %d %q %q", tc.err.Status, tc.err.Code, tc.err.Error(), tc.status, tc.code, tc.msg)
		}
	}
}
