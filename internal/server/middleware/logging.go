package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/plainq/servekit/ctxkit"
)

// Logging writes an access log line per request. Server errors are logged
// at error level together with the error reported by the handler, if any.
func Logging(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now().UTC()

			var reqErr error

			ctx := ctxkit.SetLogErrHook(r.Context(), func(err error) { reqErr = err })

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))
			status := ww.Status()

			attrs := []any{
				slog.String("method", r.Method),
				slog.Int("status", status),
				slog.String("uri", r.RequestURI),
				slog.String("remote", r.RemoteAddr),
				slog.String("duration", time.Since(start).String()),
			}

			if status < http.StatusInternalServerError {
				logger.Info("HTTP", attrs...)
				return
			}

			if reqErr != nil {
				attrs = append(attrs, slog.String("error", reqErr.Error()))
			}

			logger.Error("HTTP", attrs...)
		}

		return http.HandlerFunc(fn)
	}
}
