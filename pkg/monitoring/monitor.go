package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 业务指标
	EnrollmentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_enrollments_total",
			Help: "Enrollment attempts by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	PromotionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_promotions_total",
			Help: "Promotion attempts by outcome",
		},
		[]string{"outcome"},
	)

	QuizSubmissionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_quiz_submissions_total",
			Help: "Number of scored quiz submissions",
		},
	)

	QuizScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lms_quiz_score_percentage",
			Help:    "Distribution of quiz percentages",
			Buckets: []float64{20, 40, 60, 80, 100},
		},
	)

	DashboardSectionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_dashboard_section_failures_total",
			Help: "Dashboard sections degraded to zero values",
		},
		[]string{"section"},
	)

	AnnouncementSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lms_announcement_subscribers",
			Help: "Open announcement stream connections",
		},
	)
)

var initOnce sync.Once

// Init 注册全部指标，重复调用无副作用
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			EnrollmentCounter,
			PromotionCounter,
			QuizSubmissionCounter,
			QuizScore,
			DashboardSectionFailures,
			AnnouncementSubscribers,
		)
	})
}

// Outcome 把错误折算为指标标签
func Outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
