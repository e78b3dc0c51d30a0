package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ModerationDecision("approved")
	m.ModerationDecision("approved")
	m.ModerationDecision("rejected")
	m.ProviderRegistered()
	m.Login(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ModerationDecisions.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModerationDecisions.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("failed")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ProviderRegistered()
		m.ModerationDecision("approved")
		m.StaleRetry()
		m.PhotoUpload(true)
		m.ComplaintFiled()
		m.ReviewPosted()
		m.Login(true)
	})
}
