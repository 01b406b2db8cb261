package model

import (
	"encoding/json"
	"time"
)

// PSPSStatus is the lifecycle state of a Public Safety Power Shutoff
// event as published by the utility.
type PSPSStatus string

const (
	PSPSActive    PSPSStatus = "ACTIVE"
	PSPSPredicted PSPSStatus = "PREDICTED"
	PSPSCancelled PSPSStatus = "CANCELLED"
	PSPSCompleted PSPSStatus = "COMPLETED"
)

// PSPSEvent is a utility power shutoff event, either in progress or
// forecast. Geometry, when present, is a GeoJSON polygon covering the
// de-energized area; Counties is the coarser fallback footprint.
type PSPSEvent struct {
	EventID           string          `json:"event_id"`
	Utility           string          `json:"utility"`
	Status            PSPSStatus      `json:"status"`
	StartTime         *time.Time      `json:"start_time,omitempty"`
	EndTime           *time.Time      `json:"end_time,omitempty"`
	PredictedStart    *time.Time      `json:"predicted_start,omitempty"`
	PredictedEnd      *time.Time      `json:"predicted_end,omitempty"`
	Confidence        float64         `json:"confidence"`
	Reason            string          `json:"reason"`
	Counties          []string        `json:"counties"`
	AffectedCustomers int             `json:"affected_customers"`
	Geometry          json.RawMessage `json:"geometry,omitempty"`
}

// EffectiveStart returns the actual start for active events and the
// predicted start otherwise.
func (e *PSPSEvent) EffectiveStart() *time.Time {
	if e.Status == PSPSActive && e.StartTime != nil {
		return e.StartTime
	}
	if e.PredictedStart != nil {
		return e.PredictedStart
	}
	return e.StartTime
}

// HoursUntilStart reports hours from now until the event's effective
// start. ok is false when the event carries no usable start time.
func (e *PSPSEvent) HoursUntilStart(now time.Time) (float64, bool) {
	start := e.EffectiveStart()
	if start == nil {
		return 0, false
	}
	return start.Sub(now).Hours(), true
}
