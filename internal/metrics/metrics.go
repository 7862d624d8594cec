// Package metrics registers the Prometheus instrumentation for the
// review service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActionsTotal counts review actions by action name and outcome.
	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contest_review",
		Name:      "actions_total",
		Help:      "Review actions dispatched, by action and result.",
	}, []string{"action", "result"})

	// SnapshotsReceived counts provider snapshot webhooks accepted.
	SnapshotsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "contest_review",
		Name:      "snapshots_received_total",
		Help:      "Provider snapshot webhooks accepted for ingestion.",
	})

	// SnapshotIngestions counts terminal snapshot ingestion outcomes.
	SnapshotIngestions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contest_review",
		Name:      "snapshot_ingestions_total",
		Help:      "Snapshot ingestion outcomes.",
	}, []string{"result"})

	// SnapshotPollAttempts observes how many provider polls each
	// snapshot needed before it was ready.
	SnapshotPollAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "contest_review",
		Name:      "snapshot_poll_attempts",
		Help:      "Provider readiness polls per snapshot.",
		Buckets:   prometheus.LinearBuckets(1, 1, 8),
	})

	// WatcherCycles counts background refresh cycles by poller state.
	WatcherCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contest_review",
		Name:      "watcher_cycles_total",
		Help:      "Watcher refresh cycles, by resulting poller state.",
	}, []string{"state"})

	// ActiveSubmissions gauges submissions currently in an actively
	// processing pipeline stage.
	ActiveSubmissions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "contest_review",
		Name:      "active_submissions",
		Help:      "Submissions still moving through the automated pipeline.",
	})

	// StuckSubmissions gauges submissions past their stage threshold.
	StuckSubmissions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "contest_review",
		Name:      "stuck_submissions",
		Help:      "Submissions that have sat in a pipeline stage past its threshold.",
	})
)
