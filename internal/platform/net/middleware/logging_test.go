package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"streamtags/internal/platform/logger"
	"streamtags/internal/platform/net/middleware"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestContextLogger_TagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logger.C(r.Context()).Output(&buf)
		l.Info().Msg("inside")
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/enrichment/analyze", nil)
	req.Header.Set(chimw.RequestIDHeader, "rid-42")
	rr := httptest.NewRecorder()

	chimw.RequestID(middleware.ContextLogger(next)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(buf.String(), `"request_id":"rid-42"`) {
		t.Fatalf("log line missing request id: %s", buf.String())
	}
}

func TestContextLogger_NoRequestIDPassesThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if logger.RunID(r.Context()) != "" {
			t.Fatalf("unexpected run id")
		}
	})
	middleware.ContextLogger(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatalf("next not called")
	}
}
