package metrics

import "github.com/prometheus/client_golang/prometheus"

// Authentication methods.
const (
	AuthMethodBearer   = "bearer"
	AuthMethodAPIKey   = "api_key"
	AuthMethodPassword = "password"
)

// Authentication outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeDenied   = "denied"
)

// AuthMetrics counts authentication attempts and throttled requests.
type AuthMetrics struct {
	attempts *prometheus.CounterVec
	limited  *prometheus.CounterVec
}

// NewAuthMetrics registers the auth metrics on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Authentication attempts by method and outcome.",
	}, []string{"method", "outcome"})
	limited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limited_requests_total",
		Help: "Requests rejected by a rate limit policy.",
	}, []string{"policy"})
	reg.MustRegister(attempts, limited)
	return &AuthMetrics{attempts: attempts, limited: limited}
}

// Attempt increments the attempt counter for method and outcome.
func (m *AuthMetrics) Attempt(method, outcome string) {
	if m == nil || m.attempts == nil {
		return
	}
	m.attempts.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// RateLimited increments the blocked counter for the named policy.
func (m *AuthMetrics) RateLimited(policy string) {
	if m == nil || m.limited == nil {
		return
	}
	m.limited.WithLabelValues(normalizeLabel(policy)).Inc()
}
