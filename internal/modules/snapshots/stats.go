package snapshots

import "gonum.org/v1/gonum/stat"

// Trend is the direction assigned quantities are moving in
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

const (
	trendWindow        = 5
	trendIncreaseRatio = 1.10
	trendDecreaseRatio = 0.90
)

// Stats summarizes the whole history
type Stats struct {
	TotalAssignments int     `json:"total_assignments"`
	AverageAssigned  float64 `json:"average_assigned"`
	MostUsedSettings *Ratios `json:"most_used_settings"`
	RecentTrend      Trend   `json:"recent_trend"`
}

// Stats computes summary statistics over the current history
func (s *Store) Stats() Stats {
	return computeStats(s.List())
}

// computeStats expects history most recent first
func computeStats(history []Snapshot) Stats {
	stats := Stats{
		TotalAssignments: len(history),
		RecentTrend:      TrendStable,
	}
	if len(history) == 0 {
		return stats
	}

	assigned := make([]float64, len(history))
	for i, snapshot := range history {
		assigned[i] = float64(snapshot.Metadata.TotalAssigned)
	}
	stats.AverageAssigned = stat.Mean(assigned, nil)
	stats.MostUsedSettings = mostUsedRatios(history)
	stats.RecentTrend = recentTrend(assigned)

	return stats
}

// mostUsedRatios returns the most frequent ratios; ties go to the more recent one
func mostUsedRatios(history []Snapshot) *Ratios {
	counts := make(map[Ratios]int)
	var best Ratios
	bestCount := 0

	for _, snapshot := range history {
		counts[snapshot.Settings.Ratios]++
	}
	for _, snapshot := range history {
		r := snapshot.Settings.Ratios
		if counts[r] > bestCount {
			best, bestCount = r, counts[r]
		}
	}

	return &best
}

// recentTrend compares the mean of the newest window against the window before it
func recentTrend(assigned []float64) Trend {
	recentEnd := min(trendWindow, len(assigned))
	olderEnd := min(2*trendWindow, len(assigned))

	recent := assigned[:recentEnd]
	older := assigned[recentEnd:olderEnd]
	if len(recent) == 0 || len(older) == 0 {
		return TrendStable
	}

	recentMean := stat.Mean(recent, nil)
	olderMean := stat.Mean(older, nil)

	switch {
	case recentMean > olderMean*trendIncreaseRatio:
		return TrendIncreasing
	case recentMean < olderMean*trendDecreaseRatio:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
