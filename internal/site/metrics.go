package site

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus collectors of the site.
type Metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	renders    *prometheus.CounterVec
	reloads    prometheus.Counter
	codes      prometheus.Gauge
	scrollspy  prometheus.Counter
	visitFails prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "HTTP requests by matched route and status code.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request latency by matched route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_page_renders_total",
			Help: "Rendered portfolio pages by route key.",
		}, []string{"route_key"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_content_reloads_total",
			Help: "Successful content reloads.",
		}),
		codes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_content_codes",
			Help: "Portfolio codes in the current content snapshot.",
		}),
		scrollspy: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_scrollspy_evaluations_total",
			Help: "Scroll-spy layouts evaluated through the API.",
		}),
		visitFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_visit_record_failures_total",
			Help: "Page views that could not be written to the visitor log.",
		}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.renders, m.reloads, m.codes, m.scrollspy, m.visitFails} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
