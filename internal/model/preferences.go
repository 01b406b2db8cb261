package model

import (
	"time"

	"github.com/google/uuid"
)

// UserPreferences holds per-owner notification and automation settings.
// Fields resolve their effective preferences through their farm's owner;
// owners without a stored row fall back to DefaultPreferences.
type UserPreferences struct {
	UserID                      uuid.UUID `json:"user_id"`
	EmailNotifications          bool      `json:"email_notifications"`
	SMSNotifications            bool      `json:"sms_notifications"`
	PushNotifications           bool      `json:"push_notifications"`
	AlertSeverityMinimum        Severity  `json:"alert_severity_minimum"`
	PSPSAlertsEnabled           bool      `json:"psps_alerts_enabled"`
	FireRiskAlertsEnabled       bool      `json:"fire_risk_alerts_enabled"`
	WaterMilestoneAlertsEnabled bool      `json:"water_milestone_alerts_enabled"`
	WaterCostPerLiterUSD        float64   `json:"water_cost_per_liter_usd"`
	WaterSavingsMilestoneLiters float64   `json:"water_savings_milestone_liters"`
	PSPSPreIrrigationHours      int       `json:"psps_pre_irrigation_hours"`
	PSPSAutoPreIrrigate         bool      `json:"psps_auto_pre_irrigate"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

// DefaultPreferences returns the settings applied to owners who have
// never saved preferences.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		EmailNotifications:          true,
		SMSNotifications:            false,
		PushNotifications:           true,
		AlertSeverityMinimum:        SeverityInfo,
		PSPSAlertsEnabled:           true,
		FireRiskAlertsEnabled:       true,
		WaterMilestoneAlertsEnabled: true,
		WaterCostPerLiterUSD:        0.001,
		WaterSavingsMilestoneLiters: 1000,
		PSPSPreIrrigationHours:      36,
		PSPSAutoPreIrrigate:         true,
	}
}
