package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sagebrush-ag/fireline/internal/model"
)

// fireRiskClient fetches hazard zones from a live fire-weather service.
type fireRiskClient struct {
	c *httpClient
}

func (f *fireRiskClient) ZonesNear(ctx context.Context, lat, lon float64) (*model.FireRiskData, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))
	q.Set("radius_km", "50")

	var out model.FireRiskData
	if err := f.c.getJSON(ctx, "/zones", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// staticFireRisk returns two fixed hazard zones centered on the query
// point: a high-risk zone scoring 0.85 and a moderate one scoring 0.55.
type staticFireRisk struct{}

func (staticFireRisk) ZonesNear(_ context.Context, lat, lon float64) (*model.FireRiskData, error) {
	return &model.FireRiskData{
		Zones: []model.FireRiskZone{
			{
				ZoneID:    "zone-001",
				Name:      "High Fire Risk Zone A",
				RiskLevel: "HIGH",
				RiskScore: 0.85,
				Geometry:  squareAround(lat, lon, 0.02),
			},
			{
				ZoneID:    "zone-002",
				Name:      "Moderate Fire Risk Zone B",
				RiskLevel: "MODERATE",
				RiskScore: 0.55,
				Geometry:  squareAround(lat, lon, 0.01),
			},
		},
	}, nil
}

// squareAround builds a GeoJSON square polygon of half-width d degrees
// centered on the coordinate.
func squareAround(lat, lon, d float64) json.RawMessage {
	ring := [][]float64{
		{lon - d, lat - d},
		{lon + d, lat - d},
		{lon + d, lat + d},
		{lon - d, lat + d},
		{lon - d, lat - d},
	}
	g := map[string]any{"type": "Polygon", "coordinates": [][][]float64{ring}}
	raw, _ := json.Marshal(g)
	return raw
}
