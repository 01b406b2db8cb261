package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// AlertCategory classifies what an alert is about.
type AlertCategory string

const (
	CategoryPSPSActive          AlertCategory = "PSPS_ACTIVE"
	CategoryPSPSWarning         AlertCategory = "PSPS_WARNING"
	CategoryFireRisk            AlertCategory = "FIRE_RISK"
	CategoryWaterSavedMilestone AlertCategory = "WATER_SAVED_MILESTONE"
	CategoryIrrigation          AlertCategory = "IRRIGATION"
	CategorySystem              AlertCategory = "SYSTEM"
)

// Severity orders alerts by urgency. The ordering is used only for
// minimum-severity filtering; storage and transport keep the string.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the severity's position in the urgency ordering.
// Unknown severities rank below INFO.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s is at or above the given minimum.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// Alert is a persisted notification for an operator. FieldID is nil
// for farm- or system-level alerts.
type Alert struct {
	ID             uuid.UUID     `json:"id"`
	FieldID        *uuid.UUID    `json:"field_id,omitempty"`
	AgentType      AgentType     `json:"agent_type"`
	Category       AlertCategory `json:"category"`
	Severity       Severity      `json:"severity"`
	Message        string        `json:"message"`
	Acknowledged   bool          `json:"acknowledged"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Validate rejects alerts with an empty message.
func (a *Alert) Validate() error {
	if strings.TrimSpace(a.Message) == "" {
		return eris.New("model: alert message is empty")
	}
	return nil
}
