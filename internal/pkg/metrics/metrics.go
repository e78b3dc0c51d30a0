// Package metrics exposes the Prometheus collectors used by the services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "servicehub"

// Metrics groups the application collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registrations       prometheus.Counter
	ModerationDecisions *prometheus.CounterVec
	StaleRetries        prometheus.Counter
	PhotoUploads        *prometheus.CounterVec
	Complaints          prometheus.Counter
	Reviews             prometheus.Counter
	Logins              *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_registrations_total",
			Help:      "Provider records created.",
		}),
		ModerationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_decisions_total",
			Help:      "Provider status changes applied by admins.",
		}, []string{"status"}),
		StaleRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_stale_retries_total",
			Help:      "Status writes retried after a concurrent modification.",
		}),
		PhotoUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_uploads_total",
			Help:      "Provider photo uploads by outcome.",
		}, []string{"result"}),
		Complaints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "complaints_total",
			Help:      "Complaints submitted.",
		}),
		Reviews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_total",
			Help:      "Reviews submitted.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.Registrations,
		m.ModerationDecisions,
		m.StaleRetries,
		m.PhotoUploads,
		m.Complaints,
		m.Reviews,
		m.Logins,
	)
	return m
}

func (m *Metrics) ProviderRegistered() {
	if m != nil {
		m.Registrations.Inc()
	}
}

func (m *Metrics) ModerationDecision(status string) {
	if m != nil {
		m.ModerationDecisions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) StaleRetry() {
	if m != nil {
		m.StaleRetries.Inc()
	}
}

func (m *Metrics) PhotoUpload(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.PhotoUploads.WithLabelValues(result).Inc()
}

func (m *Metrics) ComplaintFiled() {
	if m != nil {
		m.Complaints.Inc()
	}
}

func (m *Metrics) ReviewPosted() {
	if m != nil {
		m.Reviews.Inc()
	}
}

func (m *Metrics) Login(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.Logins.WithLabelValues(result).Inc()
}
