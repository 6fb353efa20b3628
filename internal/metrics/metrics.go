package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/supplysetu/internal/logger"
)

// Metrics owns a registry so that several apps (tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	statusCategory *prometheus.CounterVec

	logins           *prometheus.CounterVec
	ordersCreated    prometheus.Counter
	orderTransitions *prometheus.CounterVec
	complaintsOpened prometheus.Counter
	jobRuns          *prometheus.CounterVec
}

// New registers all collectors under prefix.
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		statusCategory: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		}, []string{"category"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		ordersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_orders_created_total",
			Help: "Orders placed by vendors",
		}),
		orderTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_order_transitions_total",
			Help: "Order status changes by target status",
		}, []string{"status"}),
		complaintsOpened: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_complaints_opened_total",
			Help: "Complaints raised by vendors",
		}),
		jobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_scheduler_runs_total",
			Help: "Background job runs by job and result",
		}, []string{"job", "result"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware records request counts, latency and status categories.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := logger.StatusOf(c, err)
		path := c.Route().Path
		code := strconv.Itoa(status)

		m.requests.WithLabelValues(c.Method(), path, code).Inc()
		m.duration.WithLabelValues(c.Method(), path, code).Observe(time.Since(start).Seconds())
		if category := statusCategory(status); category != "" {
			m.statusCategory.WithLabelValues(category).Inc()
		}
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Login records a login attempt outcome (verified, pending, rejected, limited).
func (m *Metrics) Login(outcome string) { m.logins.WithLabelValues(outcome).Inc() }

// OrderCreated counts a new order.
func (m *Metrics) OrderCreated() { m.ordersCreated.Inc() }

// OrderTransition counts an order moving to status.
func (m *Metrics) OrderTransition(status string) { m.orderTransitions.WithLabelValues(status).Inc() }

// ComplaintOpened counts a new complaint.
func (m *Metrics) ComplaintOpened() { m.complaintsOpened.Inc() }

// JobRun counts a scheduler job run.
func (m *Metrics) JobRun(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}
