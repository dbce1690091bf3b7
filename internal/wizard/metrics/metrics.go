package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Step outcomes.
const (
	OutcomeAdvanced   = "advanced"
	OutcomeInvalid    = "invalid"
	OutcomeConflict   = "conflict"
	OutcomeNetwork    = "network_error"
	OutcomeSubmitted  = "submitted"
	OutcomeBusy       = "busy"
	OutcomeSkipped    = "skipped"
	OutcomeUnique     = "unique"
	OutcomeRecovered  = "recovered"
	OutcomeFreshStart = "fresh"
)

// Metrics provides observability for the registration wizard.
type Metrics struct {
	StepOutcomes       *prometheus.CounterVec
	GateDuration       prometheus.Histogram
	GateOutcomes       *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
	SubmissionOutcomes *prometheus.CounterVec
	SessionsStarted    *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
}

// New creates wizard metrics registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StepOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vehiclereg_wizard_step_outcomes_total",
			Help: "Continue attempts by step and outcome",
		}, []string{"step", "outcome"}),
		GateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vehiclereg_wizard_gate_duration_seconds",
			Help:    "Latency of uniqueness checks issued before leaving step 1",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		GateOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vehiclereg_wizard_gate_outcomes_total",
			Help: "Uniqueness gate results",
		}, []string{"outcome"}),
		SubmissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vehiclereg_wizard_submission_duration_seconds",
			Help:    "Latency of final registration submissions",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SubmissionOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vehiclereg_wizard_submission_outcomes_total",
			Help: "Final submission results",
		}, []string{"outcome"}),
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vehiclereg_wizard_sessions_started_total",
			Help: "Wizard sessions started, by whether a draft was recovered",
		}, []string{"outcome"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vehiclereg_wizard_active_sessions",
			Help: "Wizard sessions held in memory",
		}),
	}
}

// IncrementStep records one continue attempt. Safe on a nil receiver.
func (m *Metrics) IncrementStep(step, outcome string) {
	if m == nil {
		return
	}
	m.StepOutcomes.WithLabelValues(step, outcome).Inc()
}

// ObserveGate records a uniqueness check. Call with time.Now() at the start.
func (m *Metrics) ObserveGate(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.GateDuration.Observe(time.Since(start).Seconds())
	m.GateOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveSubmission records a submission. Call with time.Now() at the start.
func (m *Metrics) ObserveSubmission(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.SubmissionDuration.Observe(time.Since(start).Seconds())
	m.SubmissionOutcomes.WithLabelValues(outcome).Inc()
}

// IncrementSessionStarted records a new session.
func (m *Metrics) IncrementSessionStarted(recovered bool) {
	if m == nil {
		return
	}
	outcome := OutcomeFreshStart
	if recovered {
		outcome = OutcomeRecovered
	}
	m.SessionsStarted.WithLabelValues(outcome).Inc()
}

// SetActiveSessions records the number of sessions held in memory.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
