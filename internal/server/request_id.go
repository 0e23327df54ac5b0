package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/observability/logging"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware honours an inbound request ID or mints a fresh one, and
// echoes it on the response so clients can correlate log lines.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
