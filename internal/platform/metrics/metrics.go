package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsTotal prometheus.Counter
	LoginsTotal        *prometheus.CounterVec
	GateDecisionsTotal *prometheus.CounterVec
	ViewCacheTotal     *prometheus.CounterVec
	SessionsPromoted   prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahay_registrations_total",
			Help: "Total number of accounts registered",
		}),
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sahay_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		GateDecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sahay_gate_decisions_total",
			Help: "Access gate decisions by outcome",
		}, []string{"outcome"}),
		ViewCacheTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sahay_view_cache_total",
			Help: "View cache lookups by result",
		}, []string{"result"}),
		SessionsPromoted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahay_sessions_promoted_total",
			Help: "Temporary sessions promoted to full sessions",
		}),
	}
}

// IncLogin records a login attempt outcome ("success" or "failure").
func (m *Metrics) IncLogin(outcome string) {
	if m != nil {
		m.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

// IncGateDecision records a gate outcome ("allow", "redirect_login",
// "redirect_onboarding", "unauthorized", "reject").
func (m *Metrics) IncGateDecision(outcome string) {
	if m != nil {
		m.GateDecisionsTotal.WithLabelValues(outcome).Inc()
	}
}

// IncCache records a view cache lookup result ("hit" or "miss").
func (m *Metrics) IncCache(result string) {
	if m != nil {
		m.ViewCacheTotal.WithLabelValues(result).Inc()
	}
}
