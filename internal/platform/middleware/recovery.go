package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"vehiclereg/internal/platform/metrics"
	"vehiclereg/pkg/platform/httputil"
	"vehiclereg/pkg/requestcontext"
)

// Recovery turns handler panics into a 500 response. m may be nil.
func Recovery(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if m != nil {
					m.PanicsRecovered.Inc()
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", rec,
					"request_id", requestcontext.RequestID(r.Context()),
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
					Error: "internal_error",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
