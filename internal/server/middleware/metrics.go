package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/plainq/stamp/internal/server/telemetry"
)

// Metrics counts requests and measures their latency per route and status.
func Metrics() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			labels := requestLabels(r, ww.Status())

			metrics.GetOrCreateSummaryExt(telemetry.MetricName("http_request_duration", labels), 5*time.Minute, []float64{0.95, 0.99}).
				UpdateDuration(start)

			metrics.GetOrCreateCounter(telemetry.MetricName("http_requests_total", labels)).
				Inc()
		}

		return http.HandlerFunc(fn)
	}
}

// requestLabels names the route by its pattern so that path parameters
// do not blow up the label cardinality.
func requestLabels(r *http.Request, status int) telemetry.Labels {
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			route = pattern
		}
	}

	return telemetry.Labels{
		{Key: "method", Value: r.Method},
		{Key: "route", Value: route},
		{Key: "code", Value: strconv.Itoa(status)},
	}
}
