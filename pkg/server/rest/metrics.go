package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	HttpRequestCount    *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	IsochroneCount      *prometheus.CounterVec
	ReachableNodes      prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HttpRequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isochronex",
			Name:      "http_requests_total",
			Help:      "number of http requests by route, method and status code",
		}, []string{"path", "method", "code"}),
		HttpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "isochronex",
			Name:      "http_request_duration_seconds",
			Help:      "http request latency by route and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		IsochroneCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isochronex",
			Name:      "isochrones_total",
			Help:      "number of generated isochrones by strategy and fallback",
		}, []string{"strategy", "fallback"}),
		ReachableNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "isochronex",
			Name:      "isochrone_reachable_nodes",
			Help:      "reachable node count of generated isochrones",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
	reg.MustRegister(m.HttpRequestCount, m.HttpRequestDuration, m.IsochroneCount, m.ReachableNodes)
	return m
}

// PromeHttpMiddleware records request count and latency labelled by the chi route pattern.
func PromeHttpMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.HttpRequestCount.WithLabelValues(path, r.Method, strconv.Itoa(status)).Inc()
			m.HttpRequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
		}
		return http.HandlerFunc(fn)
	}
}
