// Package metrics holds the Prometheus collectors for the lead service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	LeadTransitions      *prometheus.CounterVec
	CommissionsCreated   prometheus.Counter
	CommissionAdvanced   *prometheus.CounterVec
	NotificationOutcomes *prometheus.CounterVec
	PushTokens           *prometheus.CounterVec
	NotificationsDropped prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LeadTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leads_status_transitions_total",
			Help: "Lead status changes by target status",
		}, []string{"status"}),
		CommissionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "commissions_created_total",
			Help: "Commissions materialized from enrollments",
		}),
		CommissionAdvanced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "commissions_status_changes_total",
			Help: "Commission settlement changes by target status",
		}, []string{"status"}),
		NotificationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_outcomes_total",
			Help: "Push fan-out outcomes",
		}, []string{"outcome"}),
		PushTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_push_tokens_total",
			Help: "Per-token push delivery results",
		}, []string{"result"}),
		NotificationsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Notification jobs dropped because the executor was saturated",
		}),
	}
}

func (m *Metrics) ObserveLeadTransition(status string) {
	if m == nil {
		return
	}
	m.LeadTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementCommissionsCreated() {
	if m == nil {
		return
	}
	m.CommissionsCreated.Inc()
}

func (m *Metrics) ObserveCommissionAdvanced(status string) {
	if m == nil {
		return
	}
	m.CommissionAdvanced.WithLabelValues(status).Inc()
}

// ObserveNotification records a fan-out outcome and its per-token counts.
func (m *Metrics) ObserveNotification(outcome string, success, failure int) {
	if m == nil {
		return
	}
	m.NotificationOutcomes.WithLabelValues(outcome).Inc()
	m.PushTokens.WithLabelValues("success").Add(float64(success))
	m.PushTokens.WithLabelValues("failure").Add(float64(failure))
}

func (m *Metrics) IncrementNotificationsDropped() {
	if m == nil {
		return
	}
	m.NotificationsDropped.Inc()
}
