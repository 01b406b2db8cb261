package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Action is the irrigation decision a recommendation carries.
type Action string

const (
	ActionIrrigate    Action = "IRRIGATE"
	ActionDelay       Action = "DELAY"
	ActionMonitor     Action = "MONITOR"
	ActionPreIrrigate Action = "PRE_IRRIGATE"
)

// AgentType identifies which automated agent produced a recommendation
// or alert.
type AgentType string

const (
	AgentFireAdaptiveIrrigation AgentType = "FIRE_ADAPTIVE_IRRIGATION"
	AgentWaterEfficiency        AgentType = "WATER_EFFICIENCY"
	AgentPSPSAnticipation       AgentType = "PSPS_ANTICIPATION"
)

// Recommendation is a persisted irrigation decision for one field.
type Recommendation struct {
	ID                uuid.UUID  `json:"id"`
	FieldID           uuid.UUID  `json:"field_id"`
	AgentType         AgentType  `json:"agent_type"`
	Action            Action     `json:"action"`
	Reason            string     `json:"reason"`
	RecommendedTiming *time.Time `json:"recommended_timing,omitempty"`
	ZonesAffected     []string   `json:"zones_affected"`
	Confidence        float64    `json:"confidence"`
	FireRiskReduction float64    `json:"fire_risk_reduction_percent"`
	WaterSavedLiters  float64    `json:"water_saved_liters"`
	PSPSAlert         bool       `json:"psps_alert"`
	Accepted          bool       `json:"accepted"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Validate rejects recommendations that would be unusable to an
// operator: an empty reason or a confidence outside [0, 1].
func (r *Recommendation) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return eris.New("model: recommendation reason is empty")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return eris.Errorf("model: recommendation confidence %.3f outside [0, 1]", r.Confidence)
	}
	return nil
}
