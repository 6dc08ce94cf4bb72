package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts refresh outcomes and state transitions. A nil *Metrics is a no-op.
type Metrics struct {
	refreshes   *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewMetrics registers the session collectors with reg. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sessionkit",
			Subsystem: "session",
			Name:      "refreshes_total",
			Help:      "Token refresh attempts by result.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sessionkit",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session status transitions.",
		}, []string{"from", "to"}),
	}
	if reg != nil {
		reg.MustRegister(m.refreshes, m.transitions)
	}
	return m
}

func (m *Metrics) Refreshes() *prometheus.CounterVec   { return m.refreshes }
func (m *Metrics) Transitions() *prometheus.CounterVec { return m.transitions }

const (
	resultSuccess    = "success"
	resultFailure    = "failure"
	resultSkipped    = "skipped"
	resultSuperseded = "superseded"
)

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) transition(from, to Status) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}
