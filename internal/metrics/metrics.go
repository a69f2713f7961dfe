// Package metrics holds the Prometheus collectors for stats reconciliation.
// A nil *Metrics is valid and records nothing, so tests and CLI commands can skip it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "survivor"

// Metrics groups every collector the service exports
type Metrics struct {
	snapshotsCreated  prometheus.Counter
	snapshotConflicts prometheus.Counter
	snapshotFailures  prometheus.Counter
	rollbacks         prometheus.Counter
	sourceFailures    *prometheus.CounterVec
	recordsSkipped    *prometheus.CounterVec
	fetchDuration     *prometheus.HistogramVec
	seasonTransitions *prometheus.CounterVec
	statusQueries     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		snapshotsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_created_total",
			Help:      "Season baseline snapshots written.",
		}),
		snapshotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_conflicts_total",
			Help:      "Snapshot inserts skipped because another writer got there first.",
		}),
		snapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_failures_total",
			Help:      "Snapshot batches that failed to write.",
		}),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollbacks_detected_total",
			Help:      "Players whose counters were classified as restored from a backup.",
		}),
		sourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stat_source_failures_total",
			Help:      "Failed reads of the game server stat source.",
		}, []string{"source"}),
		recordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stat_records_skipped_total",
			Help:      "Malformed or unreadable player records skipped.",
		}, []string{"source"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stat_fetch_duration_seconds",
			Help:      "Time to read every player's lifetime stats.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		seasonTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "season_transitions_total",
			Help:      "Season lifecycle operations by outcome.",
		}, []string{"operation", "outcome"}),
		statusQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_status_queries_total",
			Help:      "Game server status queries by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.snapshotsCreated,
			m.snapshotConflicts,
			m.snapshotFailures,
			m.rollbacks,
			m.sourceFailures,
			m.recordsSkipped,
			m.fetchDuration,
			m.seasonTransitions,
			m.statusQueries,
		)
	}
	return m
}

// SnapshotsCreated records inserted and conflicting snapshot rows
func (m *Metrics) SnapshotsCreated(inserted, conflicts int) {
	if m == nil {
		return
	}
	m.snapshotsCreated.Add(float64(inserted))
	m.snapshotConflicts.Add(float64(conflicts))
}

// SnapshotFailed records a snapshot batch that could not be written
func (m *Metrics) SnapshotFailed() {
	if m == nil {
		return
	}
	m.snapshotFailures.Inc()
}

// RollbacksDetected records rollback classifications
func (m *Metrics) RollbacksDetected(n int) {
	if m == nil || n == 0 {
		return
	}
	m.rollbacks.Add(float64(n))
}

// SourceFailed records a failed stat source read
func (m *Metrics) SourceFailed(source string) {
	if m == nil {
		return
	}
	m.sourceFailures.WithLabelValues(source).Inc()
}

// RecordsSkipped records malformed records dropped from a fetch
func (m *Metrics) RecordsSkipped(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.recordsSkipped.WithLabelValues(source).Add(float64(n))
}

// ObserveFetch records how long a source read took
func (m *Metrics) ObserveFetch(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// SeasonTransition records a lifecycle operation. outcome is "ok" or "error".
func (m *Metrics) SeasonTransition(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.seasonTransitions.WithLabelValues(operation, outcome).Inc()
}

// StatusQuery records a game server query result ("online" or "offline")
func (m *Metrics) StatusQuery(online bool) {
	if m == nil {
		return
	}
	result := "offline"
	if online {
		result = "online"
	}
	m.statusQueries.WithLabelValues(result).Inc()
}
