package scheduler

import (
	"github.com/aristath/stockroom/internal/modules/snapshots"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// StatsSource reports summary statistics of the snapshot history
type StatsSource interface {
	Stats() snapshots.Stats
	Capacity() int
}

// HistoryStatsJob logs the history statistics and exports them as gauges
type HistoryStatsJob struct {
	source          StatsSource
	averageAssigned prometheus.Gauge
	trend           *prometheus.GaugeVec
	log             zerolog.Logger
}

// NewHistoryStatsJob creates the job. Gauges are registered on reg when it is not nil.
func NewHistoryStatsJob(source StatsSource, reg prometheus.Registerer, log zerolog.Logger) *HistoryStatsJob {
	factory := promauto.With(reg)
	return &HistoryStatsJob{
		source: source,
		averageAssigned: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockroom_history_average_assigned",
			Help: "Mean assigned quantity across the snapshot history",
		}),
		trend: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockroom_history_recent_trend",
			Help: "1 for the current recent trend of assigned quantities, 0 otherwise",
		}, []string{"trend"}),
		log: log.With().Str("job", "history_stats").Logger(),
	}
}

// Name returns the job name
func (j *HistoryStatsJob) Name() string {
	return "history_stats"
}

// Run executes the history stats job
func (j *HistoryStatsJob) Run() error {
	stats := j.source.Stats()

	j.averageAssigned.Set(stats.AverageAssigned)
	for _, trend := range []snapshots.Trend{snapshots.TrendIncreasing, snapshots.TrendDecreasing, snapshots.TrendStable} {
		value := 0.0
		if trend == stats.RecentTrend {
			value = 1
		}
		j.trend.WithLabelValues(string(trend)).Set(value)
	}

	event := j.log.Info().
		Int("snapshots", stats.TotalAssignments).
		Int("capacity", j.source.Capacity()).
		Float64("average_assigned", stats.AverageAssigned).
		Str("recent_trend", string(stats.RecentTrend))
	if stats.MostUsedSettings != nil {
		event = event.Interface("most_used_ratios", stats.MostUsedSettings)
	}
	event.Msg("Snapshot history statistics")

	return nil
}
