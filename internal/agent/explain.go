package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/store"
)

// DecisionFactor is one input that moved a decision.
type DecisionFactor struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
	Weight       float64 `json:"weight"`
	Impact       string  `json:"impact"`
	ThresholdMet bool    `json:"threshold_met"`
}

// DataSourceInfo reports availability and quality of one external feed
// at explanation time.
type DataSourceInfo struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Available    bool       `json:"available"`
	QualityScore float64    `json:"quality_score"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// Alternative is an action that was considered and rejected.
type Alternative struct {
	Action       model.Action `json:"action"`
	Reason       string       `json:"reason"`
	Confidence   float64      `json:"confidence"`
	WhyNotChosen string       `json:"why_not_chosen"`
}

// ConfidenceBreakdown splits overall confidence into its components.
type ConfidenceBreakdown struct {
	DataQuality       float64 `json:"data_quality"`
	DecisionCertainty float64 `json:"decision_certainty"`
	ModelConfidence   float64 `json:"model_confidence"`
	Overall           float64 `json:"overall"`
}

// Explanation is a reconstructed breakdown of a recommendation. It is
// rebuilt from current data plus the stored reason, so it can drift
// from the original decision if conditions have changed since.
type Explanation struct {
	RecommendationID  uuid.UUID           `json:"recommendation_id"`
	AgentType         model.AgentType     `json:"agent_type"`
	Action            model.Action        `json:"action"`
	Summary           string              `json:"summary"`
	Reasoning         string              `json:"reasoning"`
	Factors           []DecisionFactor    `json:"decision_factors"`
	DataSources       []DataSourceInfo    `json:"data_sources"`
	Confidence        ConfidenceBreakdown `json:"confidence_breakdown"`
	Alternatives      []Alternative       `json:"alternatives_considered"`
	FireRiskReduction float64             `json:"fire_risk_reduction_percent"`
	WaterSavedLiters  float64             `json:"water_saved_liters"`
	RecommendedTiming *time.Time          `json:"recommended_timing,omitempty"`
	Urgency           string              `json:"urgency"`
	DecidedAt         time.Time           `json:"decision_timestamp"`
}

// Explainer reconstructs decision breakdowns for stored
// recommendations.
type Explainer struct {
	store     store.Store
	collector *Collector
	engine    *Engine
}

// NewExplainer builds an Explainer.
func NewExplainer(s store.Store, c *Collector, e *Engine) *Explainer {
	return &Explainer{store: s, collector: c, engine: e}
}

// Explain loads a recommendation and rebuilds the factors behind it.
// Irrigation recommendations get a full reconstruction from a fresh
// snapshot; other agents get a breakdown from the stored fields alone.
func (x *Explainer) Explain(ctx context.Context, recommendationID uuid.UUID) (*Explanation, error) {
	rec, err := x.store.GetRecommendation(ctx, recommendationID)
	if err != nil {
		return nil, eris.Wrapf(err, "agent: recommendation %s", recommendationID)
	}

	if rec.AgentType == model.AgentFireAdaptiveIrrigation {
		_, snap, err := x.collector.Snapshot(ctx, rec.FieldID)
		if err != nil {
			zap.L().Warn("snapshot unavailable for explanation, using stored fields only",
				zap.String("recommendation_id", recommendationID.String()), zap.Error(err))
			return x.generic(rec), nil
		}
		return x.irrigation(rec, snap), nil
	}
	return x.generic(rec), nil
}

func (x *Explainer) irrigation(rec *model.Recommendation, snap *model.FieldSnapshot) *Explanation {
	scores := x.engine.Score(snap)

	ex := &Explanation{
		RecommendationID:  rec.ID,
		AgentType:         rec.AgentType,
		Action:            rec.Action,
		Summary:           summarize(rec),
		Reasoning:         rec.Reason,
		Factors:           decisionFactors(rec, snap, scores),
		DataSources:       dataSources(snap),
		Confidence:        breakdown(rec.Confidence, 0.4, 0.4, 0.2),
		Alternatives:      alternativesFor(rec.Action),
		FireRiskReduction: rec.FireRiskReduction,
		WaterSavedLiters:  rec.WaterSavedLiters,
		RecommendedTiming: rec.RecommendedTiming,
		Urgency:           urgency(rec),
		DecidedAt:         rec.CreatedAt,
	}
	return ex
}

func (x *Explainer) generic(rec *model.Recommendation) *Explanation {
	summary := rec.Reason
	if runes := []rune(summary); len(runes) > 200 {
		summary = string(runes[:200])
	}
	return &Explanation{
		RecommendationID:  rec.ID,
		AgentType:         rec.AgentType,
		Action:            rec.Action,
		Summary:           summary,
		Reasoning:         rec.Reason,
		Confidence:        breakdown(rec.Confidence, 0.5, 0.3, 0.2),
		FireRiskReduction: rec.FireRiskReduction,
		WaterSavedLiters:  rec.WaterSavedLiters,
		RecommendedTiming: rec.RecommendedTiming,
		Urgency:           urgency(rec),
		DecidedAt:         rec.CreatedAt,
	}
}

func decisionFactors(rec *model.Recommendation, snap *model.FieldSnapshot, scores Scores) []DecisionFactor {
	var factors []DecisionFactor

	if snap.SoilMoisture != nil {
		m := *snap.SoilMoisture
		factors = append(factors, DecisionFactor{
			Name:         "Soil Moisture",
			Value:        m,
			Unit:         "%",
			Weight:       0.4,
			Impact:       fmt.Sprintf("Critical factor for crop health. Current level: %.1f%%", m),
			ThresholdMet: m >= 50.0,
		})
	}

	factors = append(factors, DecisionFactor{
		Name:         "Fire Risk",
		Value:        scores.FireRisk,
		Unit:         "score (0-1)",
		Weight:       0.35,
		Impact:       "High fire risk requires careful irrigation timing",
		ThresholdMet: scores.FireRisk >= 0.7,
	})

	factors = append(factors, DecisionFactor{
		Name:         "Drought Risk",
		Value:        scores.DroughtRisk,
		Unit:         "score (0-1)",
		Weight:       0.25,
		Impact:       "Sustained dryness raises the cost of delaying irrigation",
		ThresholdMet: scores.DroughtRisk >= 0.6,
	})

	if rec.PSPSAlert {
		factors = append(factors, DecisionFactor{
			Name:         "PSPS Prediction",
			Value:        1.0,
			Unit:         "boolean",
			Weight:       0.5,
			Impact:       "Power shutoff predicted, pre-irrigation recommended",
			ThresholdMet: true,
		})
	}
	return factors
}

func dataSources(snap *model.FieldSnapshot) []DataSourceInfo {
	sources := make([]DataSourceInfo, 0, 4)

	moisture := DataSourceInfo{Name: "Soil Moisture Sensor", Type: "IoT Sensor"}
	if snap.SoilMoisture != nil {
		moisture.Available = true
		moisture.QualityScore = 0.9
		moisture.Notes = fmt.Sprintf("Moisture: %.1f%%", *snap.SoilMoisture)
	} else {
		moisture.Notes = "Sensor data not available"
	}
	sources = append(sources, moisture)

	weather := DataSourceInfo{Name: "Weather Forecast", Type: "Weather API"}
	if snap.Weather != nil {
		weather.Available = true
		weather.QualityScore = 0.85
		weather.Notes = fmt.Sprintf("%d-day forecast available", len(snap.Weather.Forecast))
	} else {
		weather.Notes = "Weather data not available"
	}
	sources = append(sources, weather)

	fire := DataSourceInfo{Name: "Fire Risk Zones", Type: "Fire Risk API"}
	if score, ok := snap.FireRisk.MaxScore(); ok {
		fire.Available = true
		fire.QualityScore = 0.8
		fire.Notes = fmt.Sprintf("Max zone risk score: %.2f", score)
	} else {
		fire.Notes = "Fire risk data not available"
	}
	sources = append(sources, fire)

	ndvi := DataSourceInfo{Name: "Satellite NDVI", Type: "Satellite Imagery"}
	if snap.NDVI != nil {
		ndvi.Available = true
		ndvi.QualityScore = 0.75
		ndvi.LastUpdated = &snap.NDVI.Current.CapturedAt
		ndvi.Notes = fmt.Sprintf("NDVI %.2f, health %s", snap.NDVI.Current.NDVI, snap.NDVI.Current.HealthStatus)
	} else {
		ndvi.Notes = "Satellite data not available"
	}
	sources = append(sources, ndvi)

	return sources
}

func alternativesFor(action model.Action) []Alternative {
	switch action {
	case model.ActionIrrigate:
		return []Alternative{
			{
				Action:       model.ActionDelay,
				Reason:       "Could delay irrigation if fire risk is moderate",
				Confidence:   0.6,
				WhyNotChosen: "Crop health takes priority due to low soil moisture",
			},
			{
				Action:       model.ActionMonitor,
				Reason:       "Could monitor if conditions are borderline",
				Confidence:   0.4,
				WhyNotChosen: "Soil moisture too low to delay further",
			},
		}
	case model.ActionDelay:
		return []Alternative{
			{
				Action:       model.ActionIrrigate,
				Reason:       "Could irrigate to ensure crop health",
				Confidence:   0.5,
				WhyNotChosen: "Fire risk is high and soil moisture is sufficient",
			},
			{
				Action:       model.ActionMonitor,
				Reason:       "Could monitor if fire risk is uncertain",
				Confidence:   0.3,
				WhyNotChosen: "Fire risk is clearly high, delay is safer",
			},
		}
	case model.ActionMonitor:
		return []Alternative{
			{
				Action:       model.ActionIrrigate,
				Reason:       "Could irrigate proactively",
				Confidence:   0.5,
				WhyNotChosen: "Conditions are balanced, no immediate need",
			},
			{
				Action:       model.ActionDelay,
				Reason:       "Could delay if fire risk increases",
				Confidence:   0.4,
				WhyNotChosen: "No high fire risk detected currently",
			},
		}
	case model.ActionPreIrrigate:
		return []Alternative{
			{
				Action:       model.ActionIrrigate,
				Reason:       "Could irrigate immediately",
				Confidence:   0.7,
				WhyNotChosen: "PSPS timing requires strategic pre-irrigation",
			},
		}
	}
	return nil
}

func breakdown(overall, dataShare, certaintyShare, modelShare float64) ConfidenceBreakdown {
	return ConfidenceBreakdown{
		DataQuality:       overall * dataShare,
		DecisionCertainty: overall * certaintyShare,
		ModelConfidence:   overall * modelShare,
		Overall:           overall,
	}
}

func urgency(rec *model.Recommendation) string {
	switch {
	case rec.PSPSAlert:
		return "critical"
	case rec.Action == model.ActionIrrigate:
		return "high"
	case rec.Action == model.ActionDelay:
		return "low"
	}
	return "medium"
}

func summarize(rec *model.Recommendation) string {
	name := titleAction(rec.Action)
	switch {
	case rec.PSPSAlert:
		return name + " recommended due to predicted power shutoff. This will help prepare the field before power loss."
	case rec.Action == model.ActionDelay:
		return name + " irrigation recommended to reduce fire risk. Current soil moisture levels are sufficient to support this delay."
	case rec.Action == model.ActionIrrigate:
		return name + " recommended to protect crop health. Current conditions indicate immediate irrigation is needed."
	}
	return name + " recommended. Conditions are balanced, continuing to monitor for changes."
}

func titleAction(a model.Action) string {
	words := strings.Split(strings.ToLower(string(a)), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
