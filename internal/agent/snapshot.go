// Package agent implements the automated decision agents: the
// fire-adaptive irrigation engine, the PSPS anticipation sweep, the
// water-efficiency reporter, and the recommendation explainer.
package agent

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/gateway"
	"github.com/sagebrush-ag/fireline/internal/geo"
	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/store"
)

// Collector assembles the environmental snapshot a decision needs.
// Every input except the field's location is optional: a source that
// fails or has no data leaves its slot empty and the decision proceeds
// with reduced data quality.
type Collector struct {
	store    store.Store
	gateways *gateway.Gateways
	now      func() time.Time
}

// NewCollector builds a Collector.
func NewCollector(s store.Store, g *gateway.Gateways, now func() time.Time) *Collector {
	if now == nil {
		now = time.Now
	}
	return &Collector{store: s, gateways: g, now: now}
}

// Snapshot gathers field state and environmental inputs. It fails only
// when the field does not exist or has no recorded location; every
// other missing input degrades gracefully.
func (c *Collector) Snapshot(ctx context.Context, fieldID uuid.UUID) (*model.Field, *model.FieldSnapshot, error) {
	field, err := c.store.GetField(ctx, fieldID)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "agent: field %s", fieldID)
	}

	lat, lon, err := field.Location()
	if err != nil {
		return nil, nil, eris.Wrapf(err, "agent: field %s", fieldID)
	}

	snap := &model.FieldSnapshot{
		FieldID:     field.ID,
		CropStage:   field.CropStage,
		Latitude:    lat,
		Longitude:   lon,
		CollectedAt: c.now(),
	}

	snap.SoilMoisture = c.collectMoisture(ctx, fieldID)

	if fc, err := c.gateways.Weather.Forecast(ctx, lat, lon); err != nil {
		zap.L().Warn("weather unavailable", zap.String("field_id", fieldID.String()), zap.Error(err))
	} else {
		snap.Weather = fc
	}

	if fr, err := c.gateways.FireRisk.ZonesNear(ctx, lat, lon); err != nil {
		zap.L().Warn("fire risk unavailable", zap.String("field_id", fieldID.String()), zap.Error(err))
	} else {
		snap.FireRisk = fr
	}

	if events, err := c.gateways.PSPS.Events(ctx); err != nil {
		zap.L().Warn("psps feed unavailable", zap.String("field_id", fieldID.String()), zap.Error(err))
	} else {
		snap.PSPSKnown = true
		for i := range events {
			if geo.EventCoversField(&events[i], lat, lon) {
				snap.PSPS = append(snap.PSPS, events[i])
			}
		}
	}

	if veg, err := c.gateways.NDVI.Vegetation(ctx, lat, lon); err != nil {
		zap.L().Warn("ndvi unavailable", zap.String("field_id", fieldID.String()), zap.Error(err))
	} else {
		snap.NDVI = veg
	}

	return field, snap, nil
}

// collectMoisture prefers ingested readings and falls back to the
// sensor gateway when the field has none stored.
func (c *Collector) collectMoisture(ctx context.Context, fieldID uuid.UUID) *float64 {
	reading, err := c.store.LatestReading(ctx, fieldID)
	if err == nil {
		return &reading.SoilMoisture
	}
	if !errors.Is(err, store.ErrNotFound) {
		zap.L().Warn("stored readings unavailable", zap.String("field_id", fieldID.String()), zap.Error(err))
	}

	reading, err = c.gateways.Sensor.LatestReading(ctx, fieldID)
	if err != nil {
		zap.L().Warn("sensor unavailable", zap.String("field_id", fieldID.String()), zap.Error(err))
		return nil
	}
	return &reading.SoilMoisture
}
