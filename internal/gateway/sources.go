package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sagebrush-ag/fireline/internal/config"
	"github.com/sagebrush-ag/fireline/internal/model"
)

// WeatherSource provides current conditions and a short-range forecast
// for a coordinate.
type WeatherSource interface {
	Forecast(ctx context.Context, lat, lon float64) (*model.WeatherForecast, error)
}

// SensorSource provides the latest soil moisture reading for a field.
type SensorSource interface {
	LatestReading(ctx context.Context, fieldID uuid.UUID) (*model.SensorReading, error)
}

// FireRiskSource provides the wildfire hazard zones near a coordinate.
type FireRiskSource interface {
	ZonesNear(ctx context.Context, lat, lon float64) (*model.FireRiskData, error)
}

// PSPSSource provides the utility shutoff events currently published.
type PSPSSource interface {
	Events(ctx context.Context) ([]model.PSPSEvent, error)
}

// NDVISource provides the latest satellite vegetation index for a
// coordinate.
type NDVISource interface {
	Vegetation(ctx context.Context, lat, lon float64) (*model.NDVIData, error)
}

// Gateways bundles every external data source the agents consume.
type Gateways struct {
	Weather  WeatherSource
	Sensor   SensorSource
	FireRisk FireRiskSource
	PSPS     PSPSSource
	NDVI     NDVISource
}

// New builds the gateway set from configuration. Sources with a
// configured base URL use live HTTP clients; the rest use the built-in
// deterministic providers.
func New(cfg config.GatewayConfig, now func() time.Time) *Gateways {
	if now == nil {
		now = time.Now
	}

	g := &Gateways{
		Weather:  &staticWeather{now: now},
		Sensor:   &staticSensor{now: now},
		FireRisk: &staticFireRisk{},
		PSPS:     &staticPSPS{now: now},
		NDVI:     &staticNDVI{now: now},
	}

	if cfg.WeatherBaseURL != "" {
		g.Weather = &weatherClient{c: newHTTPClient("weather", cfg.WeatherBaseURL, cfg)}
	}
	if cfg.SensorBaseURL != "" {
		g.Sensor = &sensorClient{c: newHTTPClient("sensor", cfg.SensorBaseURL, cfg)}
	}
	if cfg.FireRiskBaseURL != "" {
		g.FireRisk = &fireRiskClient{c: newHTTPClient("fire_risk", cfg.FireRiskBaseURL, cfg)}
	}
	if cfg.PSPSBaseURL != "" {
		g.PSPS = &pspsClient{c: newHTTPClient("psps", cfg.PSPSBaseURL, cfg)}
	}
	if cfg.NDVIBaseURL != "" {
		g.NDVI = &ndviClient{c: newHTTPClient("ndvi", cfg.NDVIBaseURL, cfg)}
	}

	return g
}
