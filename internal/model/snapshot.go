package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WeatherObservation is a single point-in-time weather sample.
type WeatherObservation struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
	Precipitation float64 `json:"precipitation"`
}

// ForecastDay is one day of a weather forecast.
type ForecastDay struct {
	Date          time.Time `json:"date"`
	TempMax       float64   `json:"temp_max"`
	TempMin       float64   `json:"temp_min"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"wind_speed"`
	Precipitation float64   `json:"precipitation"`
	Description   string    `json:"description"`
}

// WeatherForecast bundles current conditions with a short-range daily
// forecast for a field location.
type WeatherForecast struct {
	Current  WeatherObservation `json:"current"`
	Forecast []ForecastDay      `json:"forecast"`
}

// PrecipNextDays sums forecast precipitation over the next n days.
func (w *WeatherForecast) PrecipNextDays(n int) float64 {
	var total float64
	for i, d := range w.Forecast {
		if i >= n {
			break
		}
		total += d.Precipitation
	}
	return total
}

// FireRiskZone is one mapped wildfire hazard zone near a field.
type FireRiskZone struct {
	ZoneID    string          `json:"zone_id"`
	Name      string          `json:"name"`
	RiskLevel string          `json:"risk_level"`
	RiskScore float64         `json:"risk_score"`
	Geometry  json.RawMessage `json:"geometry,omitempty"`
}

// FireRiskData holds the hazard zones returned for a field location.
type FireRiskData struct {
	Zones []FireRiskZone `json:"zones"`
}

// MaxScore returns the highest zone risk score, or 0 with ok=false
// when no zones were returned.
func (f *FireRiskData) MaxScore() (float64, bool) {
	if f == nil || len(f.Zones) == 0 {
		return 0, false
	}
	max := f.Zones[0].RiskScore
	for _, z := range f.Zones[1:] {
		if z.RiskScore > max {
			max = z.RiskScore
		}
	}
	return max, true
}

// NDVISample is a single vegetation index observation.
type NDVISample struct {
	NDVI            float64   `json:"ndvi"`
	CropHealthScore float64   `json:"crop_health_score"`
	HealthStatus    string    `json:"health_status"`
	CapturedAt      time.Time `json:"captured_at"`
}

// NDVIData pairs the latest vegetation sample with its recent trend.
type NDVIData struct {
	Current NDVISample `json:"current"`
	Trend   string     `json:"trend"`
}

// FieldSnapshot gathers every environmental input the decision engine
// consumes for one field. Nil slot pointers mean the corresponding data
// source was unavailable at collection time; decisions still proceed
// with degraded data quality.
type FieldSnapshot struct {
	FieldID      uuid.UUID        `json:"field_id"`
	CropStage    CropStage        `json:"crop_stage"`
	Latitude     float64          `json:"latitude"`
	Longitude    float64          `json:"longitude"`
	SoilMoisture *float64         `json:"soil_moisture,omitempty"`
	Weather      *WeatherForecast `json:"weather,omitempty"`
	FireRisk     *FireRiskData    `json:"fire_risk,omitempty"`
	PSPS         []PSPSEvent      `json:"psps_events"`
	PSPSKnown    bool             `json:"psps_known"`
	NDVI         *NDVIData        `json:"ndvi,omitempty"`
	CollectedAt  time.Time        `json:"collected_at"`
}

// DataQuality scores snapshot completeness as the fraction of the six
// input slots that are populated.
func (s *FieldSnapshot) DataQuality() float64 {
	present := 1.0 // location is always set on a built snapshot
	if s.SoilMoisture != nil {
		present++
	}
	if s.Weather != nil {
		present++
	}
	if s.FireRisk != nil {
		present++
	}
	if s.PSPSKnown {
		present++
	}
	if s.NDVI != nil {
		present++
	}
	return present / 6.0
}
