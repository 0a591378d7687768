package comparison

import (
	"math"

	"github.com/aristath/stockroom/internal/modules/snapshots"
	"gonum.org/v1/gonum/stat"
)

// TrendDirection is the sign of the day-normalized quantity change
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// CountDelta is a before/after pair of totals
type CountDelta struct {
	Before        int     `json:"before"`
	After         int     `json:"after"`
	Change        int     `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

func newCountDelta(before, after int) CountDelta {
	return CountDelta{
		Before:        before,
		After:         after,
		Change:        after - before,
		ChangePercent: percentOf(float64(after-before), float64(before)),
	}
}

// Summary holds the snapshot-wide totals of both snapshots
type Summary struct {
	TotalQuantity CountDelta `json:"total_quantity"`
	TotalAgents   CountDelta `json:"total_agents"`
	TotalModels   CountDelta `json:"total_models"`
}

// Efficiency is the average quantity per agent
type Efficiency struct {
	Before        float64 `json:"before"`
	After         float64 `json:"after"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// Distribution is the spread of per-agent quantities. A positive Improvement
// means the second snapshot is more even.
type Distribution struct {
	StdDevBefore float64 `json:"std_dev_before"`
	StdDevAfter  float64 `json:"std_dev_after"`
	Improvement  float64 `json:"improvement"`
}

// Trend is the quantity change normalized to days between the snapshots
type Trend struct {
	DaysDiff      float64        `json:"days_diff"`
	DailyChange   float64        `json:"daily_change"`
	WeeklyChange  float64        `json:"weekly_change"`
	MonthlyChange float64        `json:"monthly_change"`
	Direction     TrendDirection `json:"direction"`
}

// Impact is the relative size of the change, in percent
type Impact struct {
	Quantity float64 `json:"quantity"`
	Agents   float64 `json:"agents"`
	Overall  float64 `json:"overall"`
}

// Metrics are the derived statistics of a snapshot pair
type Metrics struct {
	Efficiency   Efficiency   `json:"efficiency"`
	Distribution Distribution `json:"distribution"`
	Trend        Trend        `json:"trend"`
	Impact       Impact       `json:"impact"`
}

// TotalQuantity sums agent quantities. Agent figures are authoritative for
// metrics, not the model totals recorded with the assignment.
func TotalQuantity(s snapshots.Snapshot) int {
	total := 0
	for _, agent := range s.Agents {
		total += agent.Quantity
	}
	return total
}

// TotalAgents counts the snapshot's agents
func TotalAgents(s snapshots.Snapshot) int {
	return len(s.Agents)
}

// TotalModels counts distinct model names across all agents
func TotalModels(s snapshots.Snapshot) int {
	seen := make(map[string]struct{})
	for _, agent := range s.Agents {
		for name := range agent.Models {
			seen[name] = struct{}{}
		}
	}
	return len(seen)
}

// Summarize computes the totals of both snapshots
func Summarize(s1, s2 snapshots.Snapshot) Summary {
	return Summary{
		TotalQuantity: newCountDelta(TotalQuantity(s1), TotalQuantity(s2)),
		TotalAgents:   newCountDelta(TotalAgents(s1), TotalAgents(s2)),
		TotalModels:   newCountDelta(TotalModels(s1), TotalModels(s2)),
	}
}

// CalculateMetrics computes efficiency, distribution, trend and impact for the pair
func CalculateMetrics(s1, s2 snapshots.Snapshot) Metrics {
	return Metrics{
		Efficiency:   efficiency(s1, s2),
		Distribution: distribution(s1, s2),
		Trend:        trend(s1, s2),
		Impact:       impact(s1, s2),
	}
}

func averagePerAgent(s snapshots.Snapshot) float64 {
	if len(s.Agents) == 0 {
		return 0
	}
	return float64(TotalQuantity(s)) / float64(len(s.Agents))
}

func efficiency(s1, s2 snapshots.Snapshot) Efficiency {
	before := averagePerAgent(s1)
	after := averagePerAgent(s2)
	return Efficiency{
		Before:        before,
		After:         after,
		Change:        after - before,
		ChangePercent: percentOf(after-before, before),
	}
}

func quantityStdDev(s snapshots.Snapshot) float64 {
	if len(s.Agents) == 0 {
		return 0
	}
	quantities := make([]float64, len(s.Agents))
	for i, agent := range s.Agents {
		quantities[i] = float64(agent.Quantity)
	}
	return stat.PopStdDev(quantities, nil)
}

func distribution(s1, s2 snapshots.Snapshot) Distribution {
	before := quantityStdDev(s1)
	after := quantityStdDev(s2)
	return Distribution{
		StdDevBefore: before,
		StdDevAfter:  after,
		Improvement:  percentOf(before-after, before),
	}
}

func trend(s1, s2 snapshots.Snapshot) Trend {
	days := s2.Timestamp.Sub(s1.Timestamp).Hours() / 24

	daily := 0.0
	if days > 0 {
		daily = float64(TotalQuantity(s2)-TotalQuantity(s1)) / days
	}

	direction := TrendStable
	switch {
	case daily > 0:
		direction = TrendIncreasing
	case daily < 0:
		direction = TrendDecreasing
	}

	return Trend{
		DaysDiff:      days,
		DailyChange:   daily,
		WeeklyChange:  daily * 7,
		MonthlyChange: daily * 30,
		Direction:     direction,
	}
}

func impact(s1, s2 snapshots.Snapshot) Impact {
	q1, q2 := TotalQuantity(s1), TotalQuantity(s2)
	a1, a2 := TotalAgents(s1), TotalAgents(s2)

	quantity := percentOf(math.Abs(float64(q2-q1)), float64(q1))
	agents := percentOf(math.Abs(float64(a2-a1)), float64(a1))

	return Impact{
		Quantity: quantity,
		Agents:   agents,
		Overall:  (quantity + agents) / 2,
	}
}

// percentOf returns part/base*100, or 0 when base is 0
func percentOf(part, base float64) float64 {
	if base == 0 {
		return 0
	}
	return part / base * 100
}
