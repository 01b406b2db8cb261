package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sagebrush-ag/fireline/internal/model"
)

// ndviClient fetches vegetation indices from a live satellite service.
type ndviClient struct {
	c *httpClient
}

func (n *ndviClient) Vegetation(ctx context.Context, lat, lon float64) (*model.NDVIData, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))

	var out model.NDVIData
	if err := n.c.getJSON(ctx, "/ndvi", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// staticNDVI reports a healthy crop at NDVI 0.65 with an improving
// trend, imaged three days ago.
type staticNDVI struct {
	now func() time.Time
}

func (n *staticNDVI) Vegetation(_ context.Context, lat, lon float64) (*model.NDVIData, error) {
	const ndvi = 0.65
	return &model.NDVIData{
		Current: model.NDVISample{
			NDVI:            ndvi,
			CropHealthScore: healthScore(ndvi),
			HealthStatus:    HealthStatus(ndvi),
			CapturedAt:      n.now().AddDate(0, 0, -3),
		},
		Trend: "improving",
	}, nil
}

func healthScore(ndvi float64) float64 {
	score := ndvi * 1.2
	if score > 1 {
		score = 1
	}
	return score
}

// HealthStatus maps an NDVI value onto the crop health bands.
func HealthStatus(ndvi float64) string {
	switch {
	case ndvi >= 0.7:
		return "excellent"
	case ndvi >= 0.5:
		return "good"
	case ndvi >= 0.3:
		return "fair"
	}
	return "poor"
}
