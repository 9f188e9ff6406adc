package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests and multiple servers don't collide on
// the global default.
type Metrics struct {
	Registry *prometheus.Registry

	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	resultsSaved   prometheus.Counter
	luckCalculated *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldcup",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "worldcup",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		resultsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worldcup",
			Name:      "results_saved_total",
			Help:      "Finished play results stored.",
		}),
		luckCalculated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldcup",
			Name:      "luck_calculations_total",
			Help:      "Luck calculations by grade.",
		}, []string{"grade"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldcup",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.latency, m.resultsSaved, m.luckCalculated, m.cacheLookups)
	return m
}

// Middleware records request counts and latency keyed by the matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ResultSaved() {
	m.resultsSaved.Inc()
}

func (m *Metrics) LuckCalculated(grade string) {
	m.luckCalculated.WithLabelValues(grade).Inc()
}

func (m *Metrics) CacheHit() {
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	m.cacheLookups.WithLabelValues("miss").Inc()
}
