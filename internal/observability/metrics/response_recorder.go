package metrics

import "net/http"

// ResponseRecorder wraps a ResponseWriter to capture the status code written
// by downstream handlers.
type ResponseRecorder struct {
	http.ResponseWriter
	status int
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *ResponseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Status returns the recorded status code, defaulting to 200 when the handler
// never called WriteHeader.
func (r *ResponseRecorder) Status() int {
	return r.status
}
