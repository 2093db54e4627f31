package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "minitienda"

// metrics are the Prometheus collectors of the web server.
type metrics struct {
	loginAttempts   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// newMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, they still count.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		// outcome: success, or one of the auth failure kinds, or rate_limited.
		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Number of login attempts by outcome.",
		}, []string{"outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests by method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}
}

func (m *metrics) loginAttempt(outcome string) {
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

// instrument is a middleware that observes the duration of every request.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(m.requestDuration, next)
}
