package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Period bounds a water-efficiency computation window.
type Period string

const (
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodSeason Period = "season"
	PeriodAll    Period = "all"
)

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeek, PeriodMonth, PeriodSeason, PeriodAll:
		return Period(s), nil
	case "":
		return PeriodSeason, nil
	}
	return "", eris.Errorf("model: unknown period %q", s)
}

// Start returns the inclusive lower bound of the period ending at now.
// ok is false for PeriodAll, which has no lower bound.
func (p Period) Start(now time.Time) (time.Time, bool) {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, 0, -30), true
	case PeriodSeason:
		return now.AddDate(0, 0, -180), true
	}
	return time.Time{}, false
}

// Months returns the period length in months, used to scale the crop's
// typical monthly water demand.
func (p Period) Months() float64 {
	switch p {
	case PeriodWeek:
		return 7.0 / 30.0
	case PeriodMonth:
		return 1
	case PeriodSeason:
		return 6
	}
	return 6
}

// WaterMetrics summarizes water use efficiency for one field over a
// period.
type WaterMetrics struct {
	FieldID              uuid.UUID  `json:"field_id"`
	FieldName            string     `json:"field_name"`
	Period               Period     `json:"period"`
	PeriodStart          *time.Time `json:"period_start,omitempty"`
	CropType             string     `json:"crop_type"`
	AreaHectares         float64    `json:"area_hectares"`
	TypicalUsageLiters   float64    `json:"typical_usage_liters"`
	RecommendedLiters    float64    `json:"recommended_liters"`
	WaterSavedLiters     float64    `json:"water_saved_liters"`
	EfficiencyPercent    float64    `json:"efficiency_percent"`
	CostSavingsUSD       float64    `json:"cost_savings_usd"`
	DroughtStressScore   float64    `json:"drought_stress_score"`
	RecommendationCount  int        `json:"recommendation_count"`
	IrrigationEventCount int        `json:"irrigation_event_count"`
	ComputedAt           time.Time  `json:"computed_at"`
}

// FarmWaterSummary aggregates per-field metrics across a farm.
type FarmWaterSummary struct {
	FarmID            uuid.UUID      `json:"farm_id"`
	Period            Period         `json:"period"`
	TotalSavedLiters  float64        `json:"total_saved_liters"`
	TotalCostUSD      float64        `json:"total_cost_savings_usd"`
	AverageEfficiency float64        `json:"average_efficiency_percent"`
	Fields            []WaterMetrics `json:"fields"`
}

// FireRiskMetrics summarizes fire exposure mitigation for one field.
type FireRiskMetrics struct {
	FieldID              uuid.UUID `json:"field_id"`
	Period               Period    `json:"period"`
	CurrentRiskScore     float64   `json:"current_risk_score"`
	RiskReductionPercent float64   `json:"risk_reduction_percent"`
	DelayCount           int       `json:"delay_count"`
	PreIrrigationCount   int       `json:"pre_irrigation_count"`
}
