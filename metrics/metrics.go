package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the KYC workflow counters. A nil *Metrics is a no-op.
type Metrics struct {
	Submissions         *prometheus.CounterVec
	Reviews             *prometheus.CounterVec
	CleanupFailures     prometheus.Counter
	ProfileSyncWarnings prometheus.Counter
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oneclick_kyc_submissions_total",
			Help: "KYC submission attempts by outcome",
		}, []string{"outcome"}),
		Reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oneclick_kyc_reviews_total",
			Help: "KYC review actions by decision and outcome",
		}, []string{"decision", "outcome"}),
		CleanupFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "oneclick_kyc_cleanup_failures_total",
			Help: "Compensating document deletions that failed",
		}),
		ProfileSyncWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "oneclick_kyc_profile_sync_warnings_total",
			Help: "Agent profile kyc_status mirror updates that failed",
		}),
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncReview(decision, outcome string) {
	if m == nil {
		return
	}
	m.Reviews.WithLabelValues(decision, outcome).Inc()
}

func (m *Metrics) IncCleanupFailure() {
	if m == nil {
		return
	}
	m.CleanupFailures.Inc()
}

func (m *Metrics) IncProfileSyncWarning() {
	if m == nil {
		return
	}
	m.ProfileSyncWarnings.Inc()
}
