package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mutations counts committed schedule mutations by operation
	// (create, move, resize, delete, clear-all).
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadence_schedule_mutations_total",
		Help: "Committed schedule mutations by operation.",
	}, []string{"op"})

	// Splits counts two-phase split operations by result (done, partial, failed).
	Splits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadence_schedule_splits_total",
		Help: "Multi-day split operations by result.",
	}, []string{"result"})

	// PatternDays counts pattern-expansion target days by result (added, skipped).
	PatternDays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadence_pattern_days_total",
		Help: "Pattern expansion target days by result.",
	}, []string{"result"})

	// SurpriseRuns counts completed auto-schedule replacements.
	SurpriseRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadence_surprise_runs_total",
		Help: "Completed auto-schedule week replacements.",
	})
)
