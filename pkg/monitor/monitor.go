package monitor

import (
	"strconv"
	"sync"
	"time"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts requests by route template, status and the
	// error kind the handler reported (none on success).
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "HTTP requests by route, status and error kind.",
		},
		[]string{"method", "path", "status", "kind"},
	)

	// HTTPRequestDuration 记录 HTTP 请求耗时 (Histogram)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "relay_http_request_duration_seconds",
			Help: "HTTP request latency by route.",
			// list reads fan out to count+1 node calls
			Buckets: []float64{0.05, 0.1, 0.3, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"method", "path"},
	)

	// HTTPInFlight 当前处理中的请求数
	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_http_in_flight_requests",
		Help: "Requests currently being served.",
	})

	initOnce sync.Once
)

// Init registers every collector with the default registry. Idempotent.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, HTTPInFlight)
		InitBusinessMetrics()
	})
}

// PrometheusMiddleware records per-route metrics. Handlers report failures
// through c.Error so the kind label reflects the errno taxonomy.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		HTTPInFlight.Inc()
		defer HTTPInFlight.Dec()

		start := time.Now()
		c.Next()

		path := c.FullPath() // 路由模板, e.g. /api/v1/proposals/:id
		if path == "" {
			return // 未匹配的路由不计入, 避免标签爆炸
		}
		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), errno.Kind(err)).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
