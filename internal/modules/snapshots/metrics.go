package snapshots

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the snapshot history
type Metrics struct {
	saved           prometheus.Counter
	evicted         prometheus.Counter
	persistFailures prometheus.Counter
	historySize     prometheus.Gauge
}

// NewMetrics creates the history collectors and registers them on reg.
// A nil reg yields working but unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		saved: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockroom_snapshots_saved_total",
			Help: "Snapshots successfully written to the history",
		}),
		evicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockroom_snapshots_evicted_total",
			Help: "Snapshots dropped from the tail of the history by the capacity limit",
		}),
		persistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockroom_snapshot_persist_failures_total",
			Help: "History reads or writes that failed in the backing store",
		}),
		historySize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockroom_snapshot_history_size",
			Help: "Number of snapshots currently kept in the history",
		}),
	}
}
