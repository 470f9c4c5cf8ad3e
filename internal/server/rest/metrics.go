package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	outcomeCreated     = "created"
	outcomeDuplicate   = "duplicate"
	outcomeInvalid     = "invalid"
	outcomeError       = "error"
	outcomeSuccess     = "success"
	outcomeUnknownUser = "unknown_user"
	outcomeWrongPin    = "wrong_pin"

	tokenPathLogin  = "login"
	tokenPathDirect = "direct"
)

// Metrics owns a private Prometheus registry so several servers (and tests)
// can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	tokens        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bpay_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bpay_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bpay_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bpay_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bpay_tokens_issued_total",
			Help: "Session tokens issued by path",
		}, []string{"path"}),
	}

	m.registry.MustRegister(
		m.requests, m.duration, m.registrations, m.logins, m.tokens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) registration(outcome string) { m.registrations.WithLabelValues(outcome).Inc() }

func (m *Metrics) login(outcome string) { m.logins.WithLabelValues(outcome).Inc() }

func (m *Metrics) tokenIssued(path string) { m.tokens.WithLabelValues(path).Inc() }
