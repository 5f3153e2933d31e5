// Package metrics exposes Prometheus instruments for voting and sweeping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moves"

// Vote results recorded by VotesCast.
const (
	VoteInserted  = "inserted"
	VoteDuplicate = "duplicate"
	VoteRejected  = "rejected"
)

// Metrics holds the instruments shared by the services and the sweeper.
type Metrics struct {
	MovesCreated  prometheus.Counter
	MovesDeleted  prometheus.Counter
	MovesSwept    prometheus.Counter
	MovesApproved prometheus.Counter
	VotesCast     *prometheus.CounterVec
	SweepErrors   prometheus.Counter
	SweepDuration prometheus.Histogram
	EventsDropped prometheus.Counter
	SweeperRuns   prometheus.Counter
	SweeperGroups prometheus.Gauge
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MovesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "created_total",
			Help: "Moves created.",
		}),
		MovesDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "deleted_total",
			Help: "Moves deleted by their creator or the group owner.",
		}),
		MovesSwept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "swept_total",
			Help: "Expired moves removed by sweeps.",
		}),
		MovesApproved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "approved_total",
			Help: "Votes that brought a move to its group's threshold.",
		}),
		VotesCast: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "votes_total",
			Help: "Vote attempts by result.",
		}, []string{"result"}),
		SweepErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sweep_errors_total",
			Help: "Moves that could not be swept.",
		}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "sweep_duration_seconds",
			Help:    "Time spent sweeping one group.",
			Buckets: prometheus.DefBuckets,
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_dropped_total",
			Help: "Events dropped because a subscriber was not keeping up.",
		}),
		SweeperRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sweeper_runs_total",
			Help: "Background sweeper passes.",
		}),
		SweeperGroups: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sweeper_last_groups",
			Help: "Groups visited by the last background sweeper pass.",
		}),
	}
}

// NewUnregistered creates instruments on a private registry, for tests and
// for services constructed without metrics.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
