package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/config"
	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/policy"
	"github.com/sagebrush-ag/fireline/internal/store"
)

// Scores holds the intermediate metrics a decision is derived from.
type Scores struct {
	WaterNeed       float64 `json:"water_need"`
	FireRisk        float64 `json:"fire_risk"`
	DroughtRisk     float64 `json:"drought_risk"`
	DataQuality     float64 `json:"data_quality"`
	MoisturePresent bool    `json:"moisture_present"`
}

// Decision is the outcome of evaluating a snapshot, before it is
// persisted as a recommendation.
type Decision struct {
	Action            model.Action
	Reason            string
	Timing            time.Time
	Zones             []string
	PSPSAlert         bool
	Confidence        float64
	FireRiskReduction float64
	WaterSavedLiters  float64
	Scores            Scores
}

// Engine produces fire-adaptive irrigation recommendations.
type Engine struct {
	store     store.Store
	collector *Collector
	cfg       config.PolicyConfig
	now       func() time.Time
}

// NewEngine builds an irrigation Engine. Zero-valued thresholds in cfg
// are replaced with the published defaults.
func NewEngine(s store.Store, c *Collector, cfg config.PolicyConfig, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: s, collector: c, cfg: normalizePolicy(cfg), now: now}
}

func normalizePolicy(cfg config.PolicyConfig) config.PolicyConfig {
	if cfg.FireRiskDelayThreshold <= 0 {
		cfg.FireRiskDelayThreshold = 0.7
	}
	if cfg.MoistureSafeThreshold <= 0 {
		cfg.MoistureSafeThreshold = 50.0
	}
	if cfg.MoistureLowThreshold <= 0 {
		cfg.MoistureLowThreshold = 30.0
	}
	if cfg.DroughtRiskThreshold <= 0 {
		cfg.DroughtRiskThreshold = 0.6
	}
	if cfg.NDVIPoorThreshold <= 0 {
		cfg.NDVIPoorThreshold = 0.3
	}
	if cfg.PSPSWindowHours <= 0 {
		cfg.PSPSWindowHours = 36
	}
	if len(cfg.DefaultZones) == 0 {
		cfg.DefaultZones = []string{"zone-1", "zone-2"}
	}
	return cfg
}

// Recommend evaluates the field's current snapshot and persists the
// resulting recommendation.
func (e *Engine) Recommend(ctx context.Context, fieldID uuid.UUID) (*model.Recommendation, error) {
	_, snap, err := e.collector.Snapshot(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	d := e.Evaluate(snap)

	rec := &model.Recommendation{
		FieldID:           fieldID,
		AgentType:         model.AgentFireAdaptiveIrrigation,
		Action:            d.Action,
		Reason:            d.Reason,
		RecommendedTiming: &d.Timing,
		ZonesAffected:     d.Zones,
		Confidence:        d.Confidence,
		FireRiskReduction: d.FireRiskReduction,
		WaterSavedLiters:  d.WaterSavedLiters,
		PSPSAlert:         d.PSPSAlert,
		CreatedAt:         e.now().UTC(),
	}
	if err := e.store.CreateRecommendation(ctx, rec); err != nil {
		return nil, eris.Wrap(err, "agent: persist recommendation")
	}

	zap.L().Info("irrigation recommendation created",
		zap.String("field_id", fieldID.String()),
		zap.String("action", string(d.Action)),
		zap.Float64("confidence", d.Confidence),
	)
	return rec, nil
}

// Evaluate applies the decision rules to a snapshot without touching
// storage. The explainer reuses it to reconstruct a decision.
func (e *Engine) Evaluate(snap *model.FieldSnapshot) Decision {
	now := e.now()
	scores := e.Score(snap)

	d := Decision{Zones: append([]string(nil), e.cfg.DefaultZones...), Scores: scores}

	// A predicted shutoff inside the pre-irrigation window preempts
	// every other rule.
	if hours, ok := e.pspsWithinWindow(snap, now); ok {
		d.Action = model.ActionPreIrrigate
		d.PSPSAlert = true
		d.Timing = now.Add(preIrrigationLead(hours))
		d.Reason = fmt.Sprintf("PSPS predicted in %.1f hours. Pre-irrigating to prepare for power shutoff.", hours)
		d.Confidence = clamp01(scores.DataQuality + 0.3)
		return d
	}

	fireRiskHigh := scores.FireRisk >= e.cfg.FireRiskDelayThreshold
	moistureSufficient := scores.MoisturePresent && *snap.SoilMoisture >= e.cfg.MoistureSafeThreshold
	moistureLow := scores.MoisturePresent && *snap.SoilMoisture < e.cfg.MoistureLowThreshold
	droughtHigh := scores.DroughtRisk >= e.cfg.DroughtRiskThreshold
	healthPoor := e.cropHealthPoor(snap)

	switch {
	case fireRiskHigh && moistureSufficient:
		d.Action = model.ActionDelay
		d.Timing = now.Add(24 * time.Hour)
		d.Reason = fmt.Sprintf(
			"Fire risk is high (%.2f) and soil moisture is sufficient (%.1f%%). Delaying irrigation to reduce fuel moisture.",
			scores.FireRisk, *snap.SoilMoisture)
		d.FireRiskReduction = min(15.0, scores.FireRisk*20.0)
		d.WaterSavedLiters = 5000.0

	case moistureLow || droughtHigh || healthPoor:
		d.Action = model.ActionIrrigate
		d.Timing = now.Add(6 * time.Hour)
		var reasons []string
		if moistureLow {
			reasons = append(reasons, fmt.Sprintf("soil moisture is low (%.1f%%)", *snap.SoilMoisture))
		}
		if droughtHigh {
			reasons = append(reasons, fmt.Sprintf("drought risk is high (%.2f)", scores.DroughtRisk))
		}
		if healthPoor {
			reasons = append(reasons, fmt.Sprintf("crop health is poor (NDVI: %.2f)", snap.NDVI.Current.NDVI))
		}
		d.Reason = strings.Join(reasons, ", ") + ". Irrigating to protect crop health."

	default:
		d.Action = model.ActionMonitor
		d.Timing = now.Add(12 * time.Hour)
		d.Reason = "Conditions are balanced. Monitoring and will reassess in 12 hours."
	}

	d.Confidence = e.confidence(scores, fireRiskHigh, moistureLow)
	return d
}

// Score computes the intermediate metrics for a snapshot.
func (e *Engine) Score(snap *model.FieldSnapshot) Scores {
	return Scores{
		WaterNeed:       e.waterNeed(snap),
		FireRisk:        fireRiskScore(snap.FireRisk),
		DroughtRisk:     e.droughtRisk(snap),
		DataQuality:     snap.DataQuality(),
		MoisturePresent: snap.SoilMoisture != nil,
	}
}

// waterNeed scores demand from growth stage, amplified under heat.
func (e *Engine) waterNeed(snap *model.FieldSnapshot) float64 {
	need := policy.StageWaterNeed(snap.CropStage)
	if snap.Weather != nil {
		temp := snap.Weather.Current.Temperature
		if temp > 30 {
			need *= 1.3
		} else if temp > 25 {
			need *= 1.1
		}
	}
	return clamp01(need)
}

// fireRiskScore takes the worst nearby zone, defaulting to moderate
// risk when the fire map is unavailable.
func fireRiskScore(data *model.FireRiskData) float64 {
	score, ok := data.MaxScore()
	if !ok {
		return 0.5
	}
	return score
}

// droughtRisk combines soil moisture with the short-range
// precipitation outlook.
func (e *Engine) droughtRisk(snap *model.FieldSnapshot) float64 {
	risk := 0.0
	if snap.SoilMoisture != nil {
		switch m := *snap.SoilMoisture; {
		case m < e.cfg.MoistureLowThreshold:
			risk += 0.7
		case m < e.cfg.MoistureSafeThreshold:
			risk += 0.4
		default:
			risk += 0.1
		}
	}
	if snap.Weather != nil && snap.Weather.PrecipNextDays(3) < 5.0 {
		risk += 0.3
	}
	return clamp01(risk)
}

// pspsWithinWindow finds the first predicted shutoff whose start falls
// inside the pre-irrigation window.
func (e *Engine) pspsWithinWindow(snap *model.FieldSnapshot, now time.Time) (float64, bool) {
	window := float64(e.cfg.PSPSWindowHours)
	for i := range snap.PSPS {
		ev := &snap.PSPS[i]
		if ev.Status != model.PSPSPredicted {
			continue
		}
		hours, ok := ev.HoursUntilStart(now)
		if ok && hours > 0 && hours <= window {
			return hours, true
		}
	}
	return 0, false
}

func (e *Engine) cropHealthPoor(snap *model.FieldSnapshot) bool {
	if snap.NDVI == nil {
		return false
	}
	return snap.NDVI.Current.HealthStatus == "poor" || snap.NDVI.Current.NDVI < e.cfg.NDVIPoorThreshold
}

// confidence starts from data quality and moves with decision clarity.
func (e *Engine) confidence(scores Scores, fireRiskHigh, moistureLow bool) float64 {
	base := scores.DataQuality
	if base == 0 {
		base = 0.5
	}
	if (fireRiskHigh && scores.MoisturePresent) || moistureLow {
		return clamp01(base + 0.2)
	}
	return max(0.5, base-0.1)
}

// preIrrigationLead schedules watering twelve hours ahead of the
// shutoff, never less than an hour out.
func preIrrigationLead(hoursUntil float64) time.Duration {
	lead := hoursUntil - 12
	if lead < 1 {
		lead = 1
	}
	return time.Duration(lead * float64(time.Hour))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
