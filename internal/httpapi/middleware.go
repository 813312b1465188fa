package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"

	"climate-server/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// statusRecorder keeps the status the client actually received: the first
// WriteHeader, or 200 when the body is written first.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.wroteHeader {
		return
	}
	sr.status = code
	sr.wroteHeader = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wroteHeader {
		sr.status = http.StatusOK
		sr.wroteHeader = true
	}
	return sr.ResponseWriter.Write(b)
}

// requestLogger logs one line per request and records it in metrics. The
// route label is the ServeMux pattern, which the mux sets on r in place.
func requestLogger(next http.Handler, metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		elapsed := time.Since(start)
		metrics.observe(r.Pattern, r.Method, sr.status, elapsed)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"pattern", r.Pattern,
			"status", sr.status,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", requestID,
		)
	})
}

// wrap builds the handler chain: request log and metrics outermost, then
// CORS and gzip, with panic recovery directly around the mux so its 500 is
// written before any outer writer flushes headers.
func wrap(mux http.Handler, metrics *Metrics) http.Handler {
	h := handlers.RecoveryHandler(
		handlers.RecoveryLogger(logging.StdLogger(slog.Default(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)(mux)
	h = handlers.CompressHandler(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(h)
	return requestLogger(h, metrics)
}
