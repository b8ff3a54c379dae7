package httpclient

import "github.com/prometheus/client_golang/prometheus"

// Metrics for outbound test requests.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestErrors   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new request metrics instance.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "total",
			Help:      "Total number of test requests made",
		}, []string{"test", "method"}),

		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "errors_total",
			Help:      "Total number of test request errors",
		}, []string{"test", "method", "error_type"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "duration_seconds",
			Help:      "Duration of test requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"test", "method"}),
	}

	prometheus.MustRegister(
		m.requestsTotal,
		m.requestErrors,
		m.requestDuration,
	)

	return m
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(test, method string) {
	m.requestsTotal.WithLabelValues(test, method).Inc()
}

// RecordError increments the request error counter.
func (m *Metrics) RecordError(test, method, errorType string) {
	m.requestErrors.WithLabelValues(test, method, errorType).Inc()
}

// ObserveDuration records the duration of a request.
func (m *Metrics) ObserveDuration(test, method string, duration float64) {
	m.requestDuration.WithLabelValues(test, method).Observe(duration)
}
