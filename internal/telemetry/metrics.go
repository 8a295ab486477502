package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewRegistry returns a private registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RegisterCounterVec registers c on reg, returning the already registered
// collector when another component got there first.
func RegisterCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// NewWebhookCounter is stripe_webhook_events_total{type,result}.
func NewWebhookCounter(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
	return RegisterCounterVec(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stripe_webhook_events_total",
			Help: "Stripe webhook deliveries by event type and outcome.",
		},
		[]string{"type", "result"},
	))
}

// RegisterHistogramVec is RegisterCounterVec for histograms.
func RegisterHistogramVec(reg prometheus.Registerer, h *prometheus.HistogramVec) (*prometheus.HistogramVec, error) {
	if reg == nil {
		return h, nil
	}
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return h, nil
}

// NewRateLimitCounter is ratelimit_rejections_total{policy}.
func NewRateLimitCounter(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
	return RegisterCounterVec(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_rejections_total",
			Help: "Requests rejected by a rate-limit policy.",
		},
		[]string{"policy"},
	))
}

// HTTPMetrics holds the request collectors used by the HTTP middleware.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) (HTTPMetrics, error) {
	requests, err := RegisterCounterVec(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	))
	if err != nil {
		return HTTPMetrics{}, err
	}
	duration, err := RegisterHistogramVec(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	))
	if err != nil {
		return HTTPMetrics{}, err
	}
	return HTTPMetrics{Requests: requests, Duration: duration}, nil
}
