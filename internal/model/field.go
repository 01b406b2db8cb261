// Package model defines the core domain types shared across the fireline
// services: fields and farms, environmental snapshots, recommendations,
// alerts, and user preferences.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// CropStage identifies the growth phase of a planted field. The stage
// drives baseline water demand when scoring irrigation decisions.
type CropStage string

const (
	StageSeedling   CropStage = "seedling"
	StageVegetative CropStage = "vegetative"
	StageFlowering  CropStage = "flowering"
	StageMaturity   CropStage = "maturity"
)

// ErrMissingLocation is returned when an operation requires field
// coordinates and the field has none recorded.
var ErrMissingLocation = eris.New("model: field has no location")

// Field is a single irrigated parcel belonging to a farm.
type Field struct {
	ID           uuid.UUID `json:"id"`
	FarmID       uuid.UUID `json:"farm_id"`
	Name         string    `json:"name"`
	CropType     string    `json:"crop_type"`
	CropStage    CropStage `json:"crop_stage"`
	AreaHectares float64   `json:"area_hectares"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Location returns the field coordinates, or ErrMissingLocation when
// either coordinate is absent.
func (f *Field) Location() (lat, lon float64, err error) {
	if f.Latitude == nil || f.Longitude == nil {
		return 0, 0, ErrMissingLocation
	}
	return *f.Latitude, *f.Longitude, nil
}

// Farm groups fields under a single owner.
type Farm struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a farm owner or operator who receives alerts.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SensorReading is a single soil moisture observation for a field.
type SensorReading struct {
	ID           uuid.UUID `json:"id"`
	FieldID      uuid.UUID `json:"field_id"`
	SensorID     string    `json:"sensor_id"`
	SoilMoisture float64   `json:"soil_moisture"`
	Temperature  *float64  `json:"temperature,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}
