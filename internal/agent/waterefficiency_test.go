package agent

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/store"
)

func seedRecommendation(t *testing.T, h *testHarness, action model.Action, accepted bool, reduction float64) *model.Recommendation {
	t.Helper()
	ctx := context.Background()

	rec := &model.Recommendation{
		FieldID:           h.field.ID,
		AgentType:         model.AgentFireAdaptiveIrrigation,
		Action:            action,
		Reason:            "seeded",
		Confidence:        0.8,
		FireRiskReduction: reduction,
		CreatedAt:         testNow.AddDate(0, 0, -10),
	}
	require.NoError(t, h.store.CreateRecommendation(ctx, rec))
	if accepted {
		require.NoError(t, h.store.AcceptRecommendation(ctx, rec.ID, testNow))
	}
	return rec
}

func TestWaterMetricsSeason(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	seedRecommendation(t, h, model.ActionIrrigate, false, 0)
	seedRecommendation(t, h, model.ActionPreIrrigate, false, 0)
	seedRecommendation(t, h, model.ActionMonitor, false, 0)

	require.NoError(t, h.store.InsertReading(ctx, &model.SensorReading{
		FieldID:      h.field.ID,
		SensorID:     "sensor-1",
		SoilMoisture: 45,
		RecordedAt:   testNow.Add(-time.Hour),
	}))

	metrics, err := h.reporter().WaterMetrics(ctx, h.field.ID, model.PeriodSeason)
	require.NoError(t, err)

	// Grape baseline 8000 L/ha/month on a 2 ha field.
	assert.InDelta(t, 96000.0, metrics.TypicalUsageLiters, 1e-6)
	assert.InDelta(t, 3200.0, metrics.RecommendedLiters, 1e-6)
	assert.InDelta(t, 92800.0, metrics.WaterSavedLiters, 1e-6)
	assert.InDelta(t, 96.67, metrics.EfficiencyPercent, 0.01)
	assert.InDelta(t, 92.8, metrics.CostSavingsUSD, 1e-6)
	assert.InDelta(t, 27.5, metrics.DroughtStressScore, 1e-6)
	assert.Equal(t, 3, metrics.RecommendationCount)
	assert.Equal(t, 2, metrics.IrrigationEventCount)
	assert.Equal(t, "grape", metrics.CropType)
	require.NotNil(t, metrics.PeriodStart)
	assert.Equal(t, testNow.AddDate(0, 0, -180), *metrics.PeriodStart)
}

func TestWaterMetricsWeekExcludesOldRecommendations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	seedRecommendation(t, h, model.ActionIrrigate, false, 0) // 10 days old

	metrics, err := h.reporter().WaterMetrics(ctx, h.field.ID, model.PeriodWeek)
	require.NoError(t, err)

	assert.Equal(t, 0, metrics.IrrigationEventCount)
	assert.InDelta(t, 8000.0*2*(7.0/30.0), metrics.TypicalUsageLiters, 1e-6)
	// No readings seeded: stress defaults to moderate.
	assert.InDelta(t, 50.0, metrics.DroughtStressScore, 1e-6)
}

func TestWaterMetricsCountsBeyondOnePage(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 150; i++ {
		seedRecommendation(t, h, model.ActionIrrigate, false, 0)
	}

	metrics, err := h.reporter().WaterMetrics(context.Background(), h.field.ID, model.PeriodSeason)
	require.NoError(t, err)

	assert.Equal(t, 150, metrics.RecommendationCount)
	assert.Equal(t, 150, metrics.IrrigationEventCount)
	// 150 events at 10% of the 16000 L monthly baseline each.
	assert.InDelta(t, 240000.0, metrics.RecommendedLiters, 1e-6)
	assert.Zero(t, metrics.WaterSavedLiters)
}

func TestFireRiskMetricsCountBeyondOnePage(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 120; i++ {
		seedRecommendation(t, h, model.ActionDelay, true, 10)
	}

	metrics, err := h.reporter().FireRiskMetrics(context.Background(), h.field.ID, model.PeriodSeason)
	require.NoError(t, err)

	assert.Equal(t, 120, metrics.DelayCount)
	assert.InDelta(t, 10.0, metrics.RiskReductionPercent, 1e-9)
}

func TestWaterMetricsUnknownField(t *testing.T) {
	h := newHarness(t)

	_, err := h.reporter().WaterMetrics(context.Background(), uuid.New(), model.PeriodSeason)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWaterMetricsMilestoneAlertFiresOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reporter := h.reporter()

	_, err := reporter.WaterMetrics(ctx, h.field.ID, model.PeriodSeason)
	require.NoError(t, err)

	alerts, err := h.store.ListAlerts(ctx, store.AlertFilter{Category: model.CategoryWaterSavedMilestone})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityInfo, alerts[0].Severity)
	assert.Equal(t, model.AgentWaterEfficiency, alerts[0].AgentType)
	assert.Contains(t, alerts[0].Message, "25000 liters")

	_, err = reporter.WaterMetrics(ctx, h.field.ID, model.PeriodSeason)
	require.NoError(t, err)

	alerts, err = h.store.ListAlerts(ctx, store.AlertFilter{Category: model.CategoryWaterSavedMilestone})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestWaterMetricsMilestoneGate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	prefs := model.DefaultPreferences()
	prefs.UserID = h.owner.ID
	prefs.WaterMilestoneAlertsEnabled = false
	require.NoError(t, h.store.UpsertPreferences(ctx, &prefs))

	_, err := h.reporter().WaterMetrics(ctx, h.field.ID, model.PeriodSeason)
	require.NoError(t, err)

	alerts, err := h.store.ListAlerts(ctx, store.AlertFilter{Category: model.CategoryWaterSavedMilestone})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestFarmSummaryAggregates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	lat, lon := 38.6, -122.4
	second := &model.Field{
		FarmID:       h.farm.ID,
		Name:         "South Block",
		CropType:     "almond",
		CropStage:    model.StageFlowering,
		AreaHectares: 1.0,
		Latitude:     &lat,
		Longitude:    &lon,
	}
	require.NoError(t, h.store.CreateField(ctx, second))

	summary, err := h.reporter().FarmSummary(ctx, h.farm.ID, model.PeriodMonth)
	require.NoError(t, err)

	require.Len(t, summary.Fields, 2)
	var total float64
	for _, f := range summary.Fields {
		total += f.WaterSavedLiters
	}
	assert.InDelta(t, total, summary.TotalSavedLiters, 1e-6)
	assert.Greater(t, summary.AverageEfficiency, 0.0)

	_, err = h.reporter().FarmSummary(ctx, uuid.New(), model.PeriodMonth)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFireRiskMetrics(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	seedRecommendation(t, h, model.ActionDelay, true, 15.0)
	seedRecommendation(t, h, model.ActionPreIrrigate, true, 5.0)
	seedRecommendation(t, h, model.ActionDelay, false, 12.0) // not accepted

	metrics, err := h.reporter().FireRiskMetrics(ctx, h.field.ID, model.PeriodSeason)
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.DelayCount)
	assert.Equal(t, 1, metrics.PreIrrigationCount)
	assert.InDelta(t, 10.0, metrics.RiskReductionPercent, 1e-6)
	// Worst zone in the deterministic fire map.
	assert.InDelta(t, 0.85, metrics.CurrentRiskScore, 1e-6)
}

func TestMilestoneTracker(t *testing.T) {
	tracker := NewMilestoneTracker()
	fieldID := uuid.New()

	tier, ok := tracker.Crossed(fieldID, 500, 0)
	assert.False(t, ok)
	assert.Zero(t, tier)

	tier, ok = tracker.Crossed(fieldID, 7000, 0)
	require.True(t, ok)
	assert.Equal(t, 5000.0, tier)

	// 1000 was crossed in the same pass and never fires later.
	_, ok = tracker.Crossed(fieldID, 1200, 0)
	assert.False(t, ok)

	tier, ok = tracker.Crossed(fieldID, 30000, 2000)
	require.True(t, ok)
	assert.Equal(t, 25000.0, tier)

	// Other fields have their own ladder.
	tier, ok = tracker.Crossed(uuid.New(), 1500, 0)
	require.True(t, ok)
	assert.Equal(t, 1000.0, tier)
}
