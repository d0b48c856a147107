package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the protocol engine.
type Metrics struct {
	AuthorizeRequests *prometheus.CounterVec
	TokensIssued      *prometheus.CounterVec
	GrantFailures     *prometheus.CounterVec
	TokenRequestMs    prometheus.Histogram
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		AuthorizeRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_authorize_requests_total",
			Help: "Authorize endpoint outcomes",
		}, []string{"outcome"}),
		TokensIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_tokens_issued_total",
			Help: "Successful token issuances by grant type",
		}, []string{"grant_type"}),
		GrantFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_grant_failures_total",
			Help: "Token endpoint failures by error code",
		}, []string{"error"}),
		TokenRequestMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "signet_token_request_duration_ms",
			Help:    "Latency of token endpoint requests in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

// NewForTest creates unregistered metrics so parallel test packages do not
// collide on the default registry.
func NewForTest() *Metrics {
	return &Metrics{
		AuthorizeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_authorize_requests_total",
		}, []string{"outcome"}),
		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_tokens_issued_total",
		}, []string{"grant_type"}),
		GrantFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_grant_failures_total",
		}, []string{"error"}),
		TokenRequestMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "signet_token_request_duration_ms",
		}),
	}
}
