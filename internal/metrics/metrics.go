package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes
const (
	OutcomeCreated    = "created"
	OutcomeIncomplete = "incomplete"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
)

type Metrics struct {
	SessionsStarted   prometheus.Counter
	SessionsAbandoned prometheus.Counter
	SessionsSwept     prometheus.Counter
	StepTransitions   *prometheus.CounterVec
	BlockedAdvances   *prometheus.CounterVec
	PhotoCaptures     *prometheus.CounterVec
	Submissions       *prometheus.CounterVec
	SubmitDuration    prometheus.Histogram
}

// New registers the registration metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_wizard_sessions_started_total",
			Help: "Total number of registration sessions started",
		}),
		SessionsAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_wizard_sessions_abandoned_total",
			Help: "Total number of registration sessions abandoned by the operator",
		}),
		SessionsSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_wizard_sessions_expired_total",
			Help: "Total number of idle registration sessions removed by the sweeper",
		}),
		StepTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_wizard_step_transitions_total",
			Help: "Total number of wizard step changes by direction and target step",
		}, []string{"direction", "step"}),
		BlockedAdvances: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_wizard_blocked_advances_total",
			Help: "Total number of forward moves blocked by missing required fields",
		}, []string{"step"}),
		PhotoCaptures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_wizard_photo_captures_total",
			Help: "Total number of photo capture attempts by result",
		}, []string{"result"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_wizard_submissions_total",
			Help: "Total number of registration submissions by outcome",
		}, []string{"outcome"}),
		SubmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_wizard_submit_duration_seconds",
			Help:    "Time spent creating the employee record on submit",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	m.SessionsStarted.Inc()
}

func (m *Metrics) IncrementSessionsAbandoned() {
	m.SessionsAbandoned.Inc()
}

func (m *Metrics) AddSessionsSwept(count int) {
	m.SessionsSwept.Add(float64(count))
}

func (m *Metrics) ObserveTransition(direction string, step int) {
	m.StepTransitions.WithLabelValues(direction, stepLabel(step)).Inc()
}

func (m *Metrics) IncrementBlockedAdvance(step int) {
	m.BlockedAdvances.WithLabelValues(stepLabel(step)).Inc()
}

func (m *Metrics) ObserveCapture(ok bool) {
	result := "captured"
	if !ok {
		result = "ignored"
	}
	m.PhotoCaptures.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSubmission(outcome string, seconds float64) {
	m.Submissions.WithLabelValues(outcome).Inc()
	if outcome == OutcomeCreated || outcome == OutcomeFailed {
		m.SubmitDuration.Observe(seconds)
	}
}

func stepLabel(step int) string {
	return strconv.Itoa(step)
}
