package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/observability/logging"
)

func TestRequestIDMiddlewarePreservesInboundID(t *testing.T) {
	t.Parallel()

	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, ok := logging.RequestIDFromContext(r.Context())
		if !ok || requestID != "incoming" {
			t.Fatalf("expected request id to be preserved, got %q", requestID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "incoming")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "incoming" {
		t.Fatalf("expected response header to echo request id, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestRequestIDMiddlewareMintsWhenAbsent(t *testing.T) {
	t.Parallel()

	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, ok := logging.RequestIDFromContext(r.Context())
		if !ok || requestID == "" {
			t.Fatal("expected a generated request id in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected response header to carry a generated request id")
	}
}
