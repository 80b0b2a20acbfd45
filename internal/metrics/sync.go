package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index synchronization Prometheus metrics.
var (
	syncEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "sync_events_total",
			Help:      "Total number of change events processed",
		},
		[]string{"entity_type", "event_type", "outcome"},
	)

	bulkItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "bulk_items_total",
			Help:      "Total number of bulk write items by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(syncEventsTotal)
	prometheus.MustRegister(bulkItemsTotal)
}

// RecordSyncEvent counts one processed change event. Outcome is one of
// "applied", "failed", "rejected".
func RecordSyncEvent(entityType, eventType, outcome string) {
	syncEventsTotal.WithLabelValues(entityType, eventType, outcome).Inc()
}

// RecordBulkItems counts bulk write item outcomes.
func RecordBulkItems(succeeded, failed int) {
	bulkItemsTotal.WithLabelValues("succeeded").Add(float64(succeeded))
	bulkItemsTotal.WithLabelValues("failed").Add(float64(failed))
}
