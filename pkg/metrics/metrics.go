package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records outcomes of price ledger mutations.
type LedgerMetrics struct {
	duration  *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	conflicts *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_mutation_duration_seconds",
		Help:    "Duration of price ledger mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutations_total",
		Help: "Price ledger mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_boundary_conflicts_total",
		Help: "Mutations aborted by the interval boundary uniqueness guard.",
	}, []string{"op"})
	reg.MustRegister(duration, mutations, conflicts)
	return &LedgerMetrics{
		duration:  duration,
		mutations: mutations,
		conflicts: conflicts,
	}
}

// ObserveDuration records the duration for the named mutation.
func (m *LedgerMetrics) ObserveDuration(op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncMutation increments the mutation counter for the named operation.
func (m *LedgerMetrics) IncMutation(op, outcome string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// IncConflict increments the boundary conflict counter.
func (m *LedgerMetrics) IncConflict(op string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
