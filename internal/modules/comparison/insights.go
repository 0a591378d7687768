package comparison

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsightImpact grades an insight
type InsightImpact string

const (
	ImpactPositive InsightImpact = "positive"
	ImpactNegative InsightImpact = "negative"
	ImpactHigh     InsightImpact = "high"
	ImpactMedium   InsightImpact = "medium"
)

// Insight types
const (
	InsightQuantityIncrease   = "quantity_increase"
	InsightQuantityDecrease   = "quantity_decrease"
	InsightAgentsAdded        = "agents_added"
	InsightAgentsRemoved      = "agents_removed"
	InsightEfficiencyImproved = "efficiency_improved"
	InsightEfficiencyDeclined = "efficiency_declined"
	InsightTrendIncreasing    = "trend_increasing"
	InsightTrendDecreasing    = "trend_decreasing"
)

// Rule thresholds, in percent
const (
	quantityChangeThreshold   = 10.0
	efficiencyChangeThreshold = 5.0
)

// Insight is a threshold-triggered observation with a fixed recommendation
type Insight struct {
	Type           string        `json:"type"`
	Message        string        `json:"message"`
	Impact         InsightImpact `json:"impact"`
	Recommendation string        `json:"recommendation"`
}

// GenerateInsights applies every rule independently, in a fixed order
func GenerateInsights(summary Summary, metrics Metrics) []Insight {
	insights := []Insight{}

	quantity := summary.TotalQuantity
	switch {
	case quantity.ChangePercent > quantityChangeThreshold:
		insights = append(insights, Insight{
			Type:           InsightQuantityIncrease,
			Message:        fmt.Sprintf("총 배정 수량이 %s%% 증가했습니다 (%d → %d)", magnitude(quantity.ChangePercent), quantity.Before, quantity.After),
			Impact:         ImpactHigh,
			Recommendation: "증가한 배정량에 맞춰 추가 재고 확보 필요",
		})
	case quantity.ChangePercent < -quantityChangeThreshold:
		insights = append(insights, Insight{
			Type:           InsightQuantityDecrease,
			Message:        fmt.Sprintf("총 배정 수량이 %s%% 감소했습니다 (%d → %d)", magnitude(quantity.ChangePercent), quantity.Before, quantity.After),
			Impact:         ImpactMedium,
			Recommendation: "배정량 감소 원인을 확인하고 배정 전략 조정 필요",
		})
	}

	agents := summary.TotalAgents
	switch {
	case agents.Change > 0:
		insights = append(insights, Insight{
			Type:           InsightAgentsAdded,
			Message:        fmt.Sprintf("배정 대상이 %d명 추가되었습니다", agents.Change),
			Impact:         ImpactMedium,
			Recommendation: "신규 대상의 초기 배정량이 적절한지 검토하세요",
		})
	case agents.Change < 0:
		insights = append(insights, Insight{
			Type:           InsightAgentsRemoved,
			Message:        fmt.Sprintf("배정 대상이 %d명 줄었습니다", -agents.Change),
			Impact:         ImpactHigh,
			Recommendation: "제외된 대상의 재고를 재배분하세요",
		})
	}

	eff := metrics.Efficiency
	switch {
	case eff.ChangePercent > efficiencyChangeThreshold:
		insights = append(insights, Insight{
			Type:           InsightEfficiencyImproved,
			Message:        fmt.Sprintf("1인당 평균 배정량이 %s%% 향상되었습니다", magnitude(eff.ChangePercent)),
			Impact:         ImpactPositive,
			Recommendation: "현재 배정 비율 설정을 유지하세요",
		})
	case eff.ChangePercent < -efficiencyChangeThreshold:
		insights = append(insights, Insight{
			Type:           InsightEfficiencyDeclined,
			Message:        fmt.Sprintf("1인당 평균 배정량이 %s%% 하락했습니다", magnitude(eff.ChangePercent)),
			Impact:         ImpactNegative,
			Recommendation: "배정 비율 설정을 재검토하세요",
		})
	}

	tr := metrics.Trend
	switch tr.Direction {
	case TrendIncreasing:
		insights = append(insights, Insight{
			Type:           InsightTrendIncreasing,
			Message:        fmt.Sprintf("하루 평균 %s대씩 증가하는 추세입니다", magnitude(tr.DailyChange)),
			Impact:         ImpactPositive,
			Recommendation: "증가 추세에 맞춰 다음 입고 물량을 늘리세요",
		})
	case TrendDecreasing:
		insights = append(insights, Insight{
			Type:           InsightTrendDecreasing,
			Message:        fmt.Sprintf("하루 평균 %s대씩 감소하는 추세입니다", magnitude(tr.DailyChange)),
			Impact:         ImpactNegative,
			Recommendation: "감소 추세를 고려해 재고 소진 계획을 세우세요",
		})
	}

	return insights
}

// magnitude renders |v| with one decimal place
func magnitude(v float64) string {
	return decimal.NewFromFloat(v).Abs().StringFixed(1)
}
