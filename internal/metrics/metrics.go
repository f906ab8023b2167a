package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"english-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the service's Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	finished   *prometheus.CounterVec
	percentage *prometheus.HistogramVec
	duration   *prometheus.HistogramVec
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// New registers collectors on a private registry so tests can build as many as they like.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_finished_total",
			Help: "Finished quizzes by effective level",
		}, []string{"level"}),
		percentage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_score_percentage",
			Help:    "Score percentage of finished quizzes",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}, []string{"requested_level"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_duration_seconds",
			Help:    "Wall-clock time from start to last answer",
			Buckets: prometheus.ExponentialBuckets(15, 2, 8),
		}, []string{"requested_level"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	r.registry.MustRegister(
		r.finished, r.percentage, r.duration, r.requests, r.latency,
		prometheus.NewGoCollector(),
	)
	return r
}

// ResultRecorded implements app.ResultListener.
func (r *Recorder) ResultRecorded(_ context.Context, result domain.QuizResult) {
	requested := string(result.RequestedLevel)
	r.finished.WithLabelValues(string(result.Level)).Inc()
	r.percentage.WithLabelValues(requested).Observe(result.Percentage)
	r.duration.WithLabelValues(requested).Observe(float64(result.TimeTakenSeconds))
}

// Middleware counts requests by matched route; unmatched paths share one label.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
