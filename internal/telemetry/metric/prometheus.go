package metric

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

const (
	namespace = "metacall"
	subsystem = "deploy"
)

// Recorder holds the lifecycle metrics. It satisfies service.Metrics.
type Recorder struct {
	registry *prometheus.Registry

	validateTotal   *prometheus.CounterVec
	refreshTotal    *prometheus.CounterVec
	authDuration    *prometheus.HistogramVec
	attemptsTotal   *prometheus.CounterVec
	sessionsTotal   *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder on its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
	}

	r.validateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "token_validations_total",
		Help:      "Token validations by result (valid, invalid, error)",
	}, []string{"result"})

	r.refreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "token_refreshes_total",
		Help:      "Token refreshes by result (ok, denied, error)",
	}, []string{"result"})

	r.authDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "auth_call_duration_seconds",
		Help:      "Duration of validate and refresh calls",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	r.attemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "acquisition_attempts_total",
		Help:      "Credential acquisition attempts by method and outcome",
	}, []string{"method", "outcome"})

	r.sessionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_total",
		Help:      "Sessions established, by token source",
	}, []string{"source"})

	r.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests to the dashboard by status code and method",
	}, []string{"code", "method"})

	r.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency to the dashboard",
		Buckets:   prometheus.DefBuckets,
	}, []string{"code", "method"})

	r.registry.MustRegister(
		r.validateTotal,
		r.refreshTotal,
		r.authDuration,
		r.attemptsTotal,
		r.sessionsTotal,
		r.requestsTotal,
		r.requestDuration,
	)

	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveValidate records a validation.
func (r *Recorder) ObserveValidate(result string, elapsed time.Duration) {
	r.validateTotal.WithLabelValues(result).Inc()
	r.authDuration.WithLabelValues("validate").Observe(elapsed.Seconds())
}

// ObserveRefresh records a refresh.
func (r *Recorder) ObserveRefresh(result string, elapsed time.Duration) {
	r.refreshTotal.WithLabelValues(result).Inc()
	r.authDuration.WithLabelValues("refresh").Observe(elapsed.Seconds())
}

// ObserveAttempt records an acquisition attempt.
func (r *Recorder) ObserveAttempt(method domain.Method, outcome domain.Outcome) {
	r.attemptsTotal.WithLabelValues(method.String(), string(outcome)).Inc()
}

// ObserveSession records an established session.
func (r *Recorder) ObserveSession(source domain.TokenSource, _ time.Duration) {
	r.sessionsTotal.WithLabelValues(string(source)).Inc()
}

// InstrumentRoundTripper wraps next so every dashboard request is counted
// and timed. A nil next means http.DefaultTransport.
func (r *Recorder) InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(r.requestsTotal,
		promhttp.InstrumentRoundTripperDuration(r.requestDuration, next))
}

// RegisterExpiry adds an ExpiryCollector reading the token from source.
func (r *Recorder) RegisterExpiry(source func() string) error {
	if err := r.registry.Register(NewExpiryCollector(source)); err != nil {
		return fmt.Errorf("register expiry collector: %w", err)
	}
	return nil
}

// WriteTextfile writes every metric to path in text exposition format.
// The file is written to a temporary name and renamed into place.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
