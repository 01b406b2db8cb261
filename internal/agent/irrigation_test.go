package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagebrush-ag/fireline/internal/config"
	"github.com/sagebrush-ag/fireline/internal/model"
)

func newBareEngine() *Engine {
	return NewEngine(nil, nil, config.PolicyConfig{}, fixedNow)
}

func snapshotWith(mutate func(*model.FieldSnapshot)) *model.FieldSnapshot {
	snap := &model.FieldSnapshot{
		CropStage:   model.StageVegetative,
		Latitude:    38.5,
		Longitude:   -122.5,
		PSPSKnown:   true,
		CollectedAt: testNow,
		Weather: &model.WeatherForecast{
			Current: model.WeatherObservation{Temperature: 22.0, Humidity: 45},
			Forecast: []model.ForecastDay{
				{Precipitation: 3.0}, {Precipitation: 3.0}, {Precipitation: 3.0},
			},
		},
		FireRisk: &model.FireRiskData{Zones: []model.FireRiskZone{
			{ZoneID: "zone-002", RiskScore: 0.55},
		}},
		NDVI: &model.NDVIData{
			Current: model.NDVISample{NDVI: 0.65, HealthStatus: "good", CapturedAt: testNow.AddDate(0, 0, -3)},
			Trend:   "improving",
		},
	}
	if mutate != nil {
		mutate(snap)
	}
	return snap
}

func TestEvaluatePreIrrigateOnPredictedShutoff(t *testing.T) {
	e := newBareEngine()
	start := testNow.Add(36 * time.Hour)
	snap := snapshotWith(func(s *model.FieldSnapshot) {
		s.SoilMoisture = floatPtr(45)
		s.PSPS = []model.PSPSEvent{{
			EventID:        "psps-pred-001",
			Status:         model.PSPSPredicted,
			PredictedStart: &start,
			Confidence:     0.85,
		}}
	})

	d := e.Evaluate(snap)

	assert.Equal(t, model.ActionPreIrrigate, d.Action)
	assert.True(t, d.PSPSAlert)
	assert.Equal(t, testNow.Add(24*time.Hour), d.Timing)
	assert.Contains(t, d.Reason, "36.0 hours")
	assert.Equal(t, 1.0, d.Confidence)
	assert.Equal(t, []string{"zone-1", "zone-2"}, d.Zones)
}

func TestEvaluatePreIrrigateTimingFloor(t *testing.T) {
	e := newBareEngine()
	start := testNow.Add(4 * time.Hour)
	snap := snapshotWith(func(s *model.FieldSnapshot) {
		s.PSPS = []model.PSPSEvent{{
			EventID:        "ev-soon",
			Status:         model.PSPSPredicted,
			PredictedStart: &start,
		}}
	})

	d := e.Evaluate(snap)

	require.Equal(t, model.ActionPreIrrigate, d.Action)
	assert.Equal(t, testNow.Add(time.Hour), d.Timing)
}

func TestEvaluateIgnoresShutoffOutsideWindow(t *testing.T) {
	e := newBareEngine()
	start := testNow.Add(48 * time.Hour)
	snap := snapshotWith(func(s *model.FieldSnapshot) {
		s.SoilMoisture = floatPtr(55)
		s.Weather.Forecast = []model.ForecastDay{
			{Precipitation: 3.0}, {Precipitation: 3.0}, {Precipitation: 3.0},
		}
		s.PSPS = []model.PSPSEvent{{
			EventID:        "ev-far",
			Status:         model.PSPSPredicted,
			PredictedStart: &start,
		}}
	})

	d := e.Evaluate(snap)
	assert.NotEqual(t, model.ActionPreIrrigate, d.Action)
	assert.False(t, d.PSPSAlert)
}

func TestEvaluateDelayUnderHighFireRisk(t *testing.T) {
	e := newBareEngine()
	snap := snapshotWith(func(s *model.FieldSnapshot) {
		s.SoilMoisture = floatPtr(55)
		s.FireRisk = &model.FireRiskData{Zones: []model.FireRiskZone{
			{ZoneID: "zone-001", RiskScore: 0.85},
		}}
	})

	d := e.Evaluate(snap)

	assert.Equal(t, model.ActionDelay, d.Action)
	assert.Equal(t, testNow.Add(24*time.Hour), d.Timing)
	assert.Contains(t, d.Reason, "Fire risk is high (0.85)")
	assert.Equal(t, 15.0, d.FireRiskReduction)
	assert.Equal(t, 5000.0, d.WaterSavedLiters)
	assert.InDelta(t, 1.0, d.Confidence, 1e-9)
}

func TestEvaluateIrrigateJoinsReasons(t *testing.T) {
	e := newBareEngine()
	snap := snapshotWith(func(s *model.FieldSnapshot) {
		s.SoilMoisture = floatPtr(20)
		s.NDVI = &model.NDVIData{Current: model.NDVISample{NDVI: 0.25, HealthStatus: "poor"}}
	})

	d := e.Evaluate(snap)

	assert.Equal(t, model.ActionIrrigate, d.Action)
	assert.Equal(t, testNow.Add(6*time.Hour), d.Timing)
	assert.Contains(t, d.Reason, "soil moisture is low (20.0%)")
	assert.Contains(t, d.Reason, "drought risk is high")
	assert.Contains(t, d.Reason, "crop health is poor (NDVI: 0.25)")
	assert.Contains(t, d.Reason, "Irrigating to protect crop health.")
}

func TestEvaluateMonitorWhenBalanced(t *testing.T) {
	e := newBareEngine()
	snap := snapshotWith(func(s *model.FieldSnapshot) {
		s.SoilMoisture = floatPtr(55)
	})

	d := e.Evaluate(snap)

	assert.Equal(t, model.ActionMonitor, d.Action)
	assert.Equal(t, testNow.Add(12*time.Hour), d.Timing)
	assert.Contains(t, d.Reason, "Conditions are balanced")
	// Full data quality, minus the uncertainty discount.
	assert.InDelta(t, 0.9, d.Confidence, 1e-9)
}

func TestEvaluateMonitorsWithNoData(t *testing.T) {
	e := newBareEngine()

	d := e.Evaluate(&model.FieldSnapshot{CropStage: model.StageVegetative})

	assert.Equal(t, model.ActionMonitor, d.Action)
	assert.Equal(t, 0.5, d.Confidence)
	assert.InDelta(t, 1.0/6.0, d.Scores.DataQuality, 1e-9)
	assert.Equal(t, 0.5, d.Scores.FireRisk)
	assert.False(t, d.Scores.MoisturePresent)
}

func TestScoreWaterNeedHeat(t *testing.T) {
	e := newBareEngine()

	cases := []struct {
		name string
		temp float64
		want float64
	}{
		{"mild", 22, 0.8},
		{"warm", 27, 0.88},
		{"hot", 32, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshotWith(func(s *model.FieldSnapshot) {
				s.Weather.Current.Temperature = tc.temp
			})
			assert.InDelta(t, tc.want, e.Score(snap).WaterNeed, 1e-9)
		})
	}
}

func TestScoreDroughtRisk(t *testing.T) {
	e := newBareEngine()

	t.Run("dry soil and dry forecast", func(t *testing.T) {
		snap := snapshotWith(func(s *model.FieldSnapshot) {
			s.SoilMoisture = floatPtr(25)
			s.Weather.Forecast = []model.ForecastDay{{Precipitation: 0}, {Precipitation: 0}, {Precipitation: 0}}
		})
		assert.InDelta(t, 1.0, e.Score(snap).DroughtRisk, 1e-9)
	})

	t.Run("wet soil and incoming rain", func(t *testing.T) {
		snap := snapshotWith(func(s *model.FieldSnapshot) {
			s.SoilMoisture = floatPtr(60)
			s.Weather.Forecast = []model.ForecastDay{{Precipitation: 4}, {Precipitation: 4}, {Precipitation: 4}}
		})
		assert.InDelta(t, 0.1, e.Score(snap).DroughtRisk, 1e-9)
	})

	t.Run("no data at all", func(t *testing.T) {
		snap := snapshotWith(func(s *model.FieldSnapshot) {
			s.Weather = nil
		})
		assert.InDelta(t, 0.0, e.Score(snap).DroughtRisk, 1e-9)
	})
}

func TestScoreFireRiskDefaultsWithoutZones(t *testing.T) {
	e := newBareEngine()
	snap := snapshotWith(func(s *model.FieldSnapshot) {
		s.FireRisk = nil
	})
	assert.InDelta(t, 0.5, e.Score(snap).FireRisk, 1e-9)
}

func TestRecommendPersistsDecision(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// The deterministic PSPS feed predicts a shutoff 36 hours out, so
	// the engine pre-irrigates.
	rec, err := h.engine().Recommend(ctx, h.field.ID)
	require.NoError(t, err)

	assert.Equal(t, model.AgentFireAdaptiveIrrigation, rec.AgentType)
	assert.Equal(t, model.ActionPreIrrigate, rec.Action)
	assert.True(t, rec.PSPSAlert)
	require.NotNil(t, rec.RecommendedTiming)
	assert.Equal(t, testNow.Add(24*time.Hour), rec.RecommendedTiming.UTC())

	stored, err := h.store.GetRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Action, stored.Action)
	assert.Equal(t, rec.Reason, stored.Reason)
}

func TestRecommendFailsWithoutLocation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	bare := &model.Field{FarmID: h.farm.ID, Name: "Unmapped", CropType: "grape", CropStage: model.StageSeedling}
	require.NoError(t, h.store.CreateField(ctx, bare))

	_, err := h.engine().Recommend(ctx, bare.ID)
	assert.ErrorIs(t, err, model.ErrMissingLocation)
}
