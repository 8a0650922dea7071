package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lintang-b-s/roadgenx/pkg/server/rest/service"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	generatedRoads     prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadgenx",
			Name:      "http_requests_total",
			Help:      "number of http requests by route, method & status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roadgenx",
			Name:      "http_request_duration_seconds",
			Help:      "http request latency by route & method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadgenx",
			Name:      "generations_total",
			Help:      "number of road network generations by result.",
		}, []string{"result"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roadgenx",
			Name:      "generation_duration_seconds",
			Help:      "time spent generating one road network.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		generatedRoads: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roadgenx",
			Name:      "generated_roads",
			Help:      "number of roads in a generated network.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.generations, m.generationDuration, m.generatedRoads)
	return m
}

// ObserveGeneration. record one generation outcome.
func (m *Metrics) ObserveGeneration(res service.GenerateResult, err error) {
	switch {
	case err != nil:
		m.generations.WithLabelValues("error").Inc()
		return
	case res.Truncated:
		m.generations.WithLabelValues("truncated").Inc()
	default:
		m.generations.WithLabelValues("ok").Inc()
	}
	m.generationDuration.Observe(res.Stats.Duration.Seconds())
	m.generatedRoads.Observe(float64(res.Stats.Roads))
}

// PromeHttpMiddleware. count & time every request, labelled with the matched chi route pattern.
func PromeHttpMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			route := "unknown"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		}
		return http.HandlerFunc(fn)
	}
}
