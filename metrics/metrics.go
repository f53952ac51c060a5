package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 服务端指标
type Metrics struct {
	// HTTPRequestCounter labels: method, path, status_code
	HTTPRequestCounter *prometheus.CounterVec
	// HTTPRequestDuration labels: method, path
	HTTPRequestDuration *prometheus.HistogramVec
	// DatasetOperations labels: operation (save|update|list|get|delete|export), status (success|error)
	DatasetOperations *prometheus.CounterVec
	// DrawingSessions 当前连接的绘制 websocket 数
	DrawingSessions prometheus.Gauge
}

// New 在 reg 上注册全部指标，reg 为 nil 时使用默认注册表
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sketchmap",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sketchmap",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method", "path"}),
		DatasetOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sketchmap",
			Name:      "dataset_operations_total",
			Help:      "Dataset CRUD operations by outcome.",
		}, []string{"operation", "status"}),
		DrawingSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sketchmap",
			Name:      "drawing_sessions",
			Help:      "Open drawing websocket sessions.",
		}),
	}
}

// Middleware 记录请求数与耗时，path 使用路由模板
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestCounter.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Dataset 记录一次数据集操作
func (m *Metrics) Dataset(op string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.DatasetOperations.WithLabelValues(op, status).Inc()
}
