package gateway

import (
	"context"
	"time"

	"github.com/sagebrush-ag/fireline/internal/model"
)

// pspsClient fetches shutoff events from a live utility feed.
type pspsClient struct {
	c *httpClient
}

func (p *pspsClient) Events(ctx context.Context) ([]model.PSPSEvent, error) {
	var active, predicted []model.PSPSEvent
	if err := p.c.getJSON(ctx, "/shutoffs/active", nil, &active); err != nil {
		return nil, err
	}
	if err := p.c.getJSON(ctx, "/shutoffs/predicted", nil, &predicted); err != nil {
		return nil, err
	}
	return append(active, predicted...), nil
}

// staticPSPS publishes one active and one predicted event matching the
// PG&E feed shape. The predicted event starts 36 hours out at 0.85
// confidence, which exercises the pre-irrigation window end to end.
type staticPSPS struct {
	now func() time.Time
}

func (p *staticPSPS) Events(_ context.Context) ([]model.PSPSEvent, error) {
	now := p.now()

	activeStart := now.Add(-2 * time.Hour)
	activeEnd := now.Add(24 * time.Hour)
	predStart := now.Add(36 * time.Hour)
	predEnd := predStart.Add(24 * time.Hour)

	return []model.PSPSEvent{
		{
			EventID:           "psps-001",
			Utility:           "PG&E",
			Status:            model.PSPSActive,
			StartTime:         &activeStart,
			EndTime:           &activeEnd,
			AffectedCustomers: 15000,
			Counties:          []string{"Sonoma", "Napa"},
			Reason:            "High fire risk conditions",
		},
		{
			EventID:           "psps-pred-001",
			Utility:           "PG&E",
			Status:            model.PSPSPredicted,
			PredictedStart:    &predStart,
			PredictedEnd:      &predEnd,
			Confidence:        0.85,
			AffectedCustomers: 25000,
			Counties:          []string{"Sonoma", "Napa", "Marin"},
			Reason:            "Forecasted high winds and low humidity",
		},
	}, nil
}
