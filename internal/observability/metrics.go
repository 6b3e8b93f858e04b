package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wellness_service",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	syncCompletedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wellness_service",
		Subsystem: "persistence",
		Name:      "last_device_sync_timestamp_seconds",
		Help:      "Unix timestamp of the most recent committed device sync.",
	})
	syncBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wellness_service",
		Subsystem: "sync",
		Name:      "batch_records",
		Help:      "Number of records per committed device sync batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, syncCompletedGauge, syncBatchSize)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordSyncCompleted updates the sync watermark gauge.
func RecordSyncCompleted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	syncCompletedGauge.Set(float64(ts.Unix()))
}

// RecordSyncBatchSize observes the size of a committed batch.
func RecordSyncBatchSize(n int) {
	syncBatchSize.Observe(float64(n))
}
