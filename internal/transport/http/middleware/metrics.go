package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "beanpulse_http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beanpulse_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	signalEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "beanpulse_signal_events_total", Help: "Count of ingested coffee signal events"},
		[]string{"kind"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, signalEvents) }

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		httpReqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// CountSignalEvent 进站事件按 kind 计数，handler 里调。
func CountSignalEvent(kind string) { signalEvents.WithLabelValues(kind).Inc() }
