package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the collectors of one Server. Each server owns its registry
// so several servers (and tests) never collide on registration.
type metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reports         *prometheus.CounterVec
	normalizeFails  *prometheus.CounterVec
	subjectCodes    *prometheus.GaugeVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		// Labels: route (mux pattern), code (HTTP status)
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curricula",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"route", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "curricula",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		// Labels: subject, kind (report, export)
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curricula",
			Name:      "reports_total",
			Help:      "Reports generated by subject and kind",
		}, []string{"subject", "kind"}),
		normalizeFails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curricula",
			Name:      "normalization_failures_total",
			Help:      "Requests rejected because codes failed to normalize",
		}, []string{"subject"}),
		// Labels: subject, class (SSBB, CE, CEv, DO)
		subjectCodes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "curricula",
			Name:      "subject_codes",
			Help:      "Registry size of each loaded subject",
		}, []string{"subject", "class"}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps h with request counting and timing under route.
func (m *metrics) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
