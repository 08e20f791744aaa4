package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad"), KindValidation},
		{"permission", PermissionDenied("no"), KindPermissionDenied},
		{"not found", NotFound("gone"), KindNotFound},
		{"conflict", Conflict("taken", nil), KindConflict},
		{"unavailable", Unavailable(cause), KindServiceUnavailable},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("gone")), KindNotFound},
		{"plain error", cause, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnavailableHidesCause(t *testing.T) {
	cause := errors.New(`pq: duplicate key value violates unique constraint "posts_slug_key"`)
	err := Unavailable(cause)

	if MessageOf(err) != "storage is unavailable" {
		t.Errorf("MessageOf = %q, want generic message", MessageOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("cause should stay reachable through Unwrap")
	}
}

func TestMessageOfPlainError(t *testing.T) {
	if got := MessageOf(errors.New("secret detail")); got != "internal error" {
		t.Errorf("MessageOf = %q, want %q", got, "internal error")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindPermissionDenied, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindServiceUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
		{KindRateLimited, http.StatusTooManyRequests},
		{Kind("bogus"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.kind); got != tt.want {
			t.Errorf("HTTPStatus(%q) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", NotFound("post not found"), http.StatusNotFound, `{"error":{"kind":"not_found","message":"post not found"}}`},
		{"unavailable hides cause", Unavailable(errors.New("dial tcp 10.0.0.1:5432")), http.StatusServiceUnavailable, `{"error":{"kind":"service_unavailable","message":"storage is unavailable"}}`},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, `{"error":{"kind":"internal","message":"internal error"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Respond(rr, tt.err)
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if got := strings.TrimSpace(rr.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}
