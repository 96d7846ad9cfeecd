package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of model invocations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Model invocation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)

	ScreeningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screenings_total",
			Help: "Total documents screened by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_lookups_total",
			Help: "Result cache lookups by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// Screening outcome distributions
	MatchPercentHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screening_match_percent",
			Help:    "Distribution of percentage match values [0,100]",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	TenureYearsHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screening_tenure_years",
			Help:    "Distribution of aggregated tenure in years",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 12, 20, 30},
		},
	)
)

// InitMetrics registers all collectors once per process.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(ScreeningsTotal)
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(MatchPercentHistogram)
	prometheus.MustRegister(TenureYearsHistogram)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// RecordCacheLookup tracks a hit or miss for one cache kind.
func RecordCacheLookup(kind string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheLookupsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveScreening records the distribution samples of one finished record.
func ObserveScreening(matchPercent float64, tenureYears float64) {
	if matchPercent >= 0 && matchPercent <= 100 {
		MatchPercentHistogram.Observe(matchPercent)
	}
	if tenureYears >= 0 {
		TenureYearsHistogram.Observe(tenureYears)
	}
}
