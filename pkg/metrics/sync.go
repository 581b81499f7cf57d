package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cointrail_sync_runs_total",
			Help: "Number of sync runs, partitioned by exchange and result",
		},
		[]string{"exchange", "result"},
	)

	SyncEntriesInsertedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cointrail_sync_entries_inserted_total",
			Help: "Number of ledger entries inserted by sync runs",
		},
		[]string{"exchange"},
	)

	SyncEntriesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cointrail_sync_entries_skipped_total",
			Help: "Number of already-present ledger entries skipped by sync runs",
		},
		[]string{"exchange"},
	)

	SyncDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cointrail_sync_duration_seconds",
			Help:    "Wall time of sync runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
		[]string{"exchange"},
	)
)

func init() {
	prometheus.MustRegister(
		SyncRunsTotal,
		SyncEntriesInsertedTotal,
		SyncEntriesSkippedTotal,
		SyncDurationSeconds,
	)
}
