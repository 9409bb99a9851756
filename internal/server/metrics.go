package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	reports    *prometheus.CounterVec
	reportSize *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodwaste",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "foodwaste",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodwaste",
			Name:      "reports_generated_total",
			Help:      "Report generations by cadence and outcome.",
		}, []string{"cadence", "outcome"}),
		reportSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "foodwaste",
			Name:      "report_size_bytes",
			Help:      "Size of generated report documents.",
			Buckets:   prometheus.ExponentialBuckets(4096, 2, 10),
		}, []string{"cadence"}),
	}
	reg.MustRegister(m.requests, m.duration, m.reports, m.reportSize)
	return m
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *metrics) observeReport(cadence string, size int, err error) {
	if err != nil {
		m.reports.WithLabelValues(cadence, "error").Inc()
		return
	}
	m.reports.WithLabelValues(cadence, "ok").Inc()
	m.reportSize.WithLabelValues(cadence).Observe(float64(size))
}
