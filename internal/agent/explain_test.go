package agent

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/store"
)

func newExplainer(h *testHarness) *Explainer {
	collector := NewCollector(h.store, h.gateways, fixedNow)
	return NewExplainer(h.store, collector, h.engine())
}

func TestExplainIrrigationRecommendation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rec, err := h.engine().Recommend(ctx, h.field.ID)
	require.NoError(t, err)
	require.Equal(t, model.ActionPreIrrigate, rec.Action)

	ex, err := newExplainer(h).Explain(ctx, rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, ex.RecommendationID)
	assert.Equal(t, model.AgentFireAdaptiveIrrigation, ex.AgentType)
	assert.Equal(t, rec.Reason, ex.Reasoning)
	assert.Contains(t, ex.Summary, "predicted power shutoff")
	assert.Equal(t, "critical", ex.Urgency)

	factorNames := make([]string, len(ex.Factors))
	for i, f := range ex.Factors {
		factorNames[i] = f.Name
	}
	assert.Contains(t, factorNames, "Soil Moisture")
	assert.Contains(t, factorNames, "Fire Risk")
	assert.Contains(t, factorNames, "PSPS Prediction")

	require.Len(t, ex.DataSources, 4)
	for _, src := range ex.DataSources {
		assert.True(t, src.Available, src.Name)
		assert.Greater(t, src.QualityScore, 0.0, src.Name)
	}

	sum := ex.Confidence.DataQuality + ex.Confidence.DecisionCertainty + ex.Confidence.ModelConfidence
	assert.InDelta(t, ex.Confidence.Overall, sum, 1e-9)
	assert.Equal(t, rec.Confidence, ex.Confidence.Overall)

	require.Len(t, ex.Alternatives, 1)
	assert.Equal(t, model.ActionIrrigate, ex.Alternatives[0].Action)
}

func TestExplainGenericRecommendation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rec := &model.Recommendation{
		FieldID:    h.field.ID,
		AgentType:  model.AgentPSPSAnticipation,
		Action:     model.ActionPreIrrigate,
		Reason:     strings.Repeat("shutoff imminent. ", 20),
		Confidence: 0.85,
		PSPSAlert:  true,
		CreatedAt:  testNow,
	}
	require.NoError(t, h.store.CreateRecommendation(ctx, rec))

	ex, err := newExplainer(h).Explain(ctx, rec.ID)
	require.NoError(t, err)

	assert.Len(t, ex.Summary, 200)
	assert.Empty(t, ex.Factors)
	assert.Empty(t, ex.DataSources)
	assert.Equal(t, "critical", ex.Urgency)
	assert.InDelta(t, 0.85*0.5, ex.Confidence.DataQuality, 1e-9)
	assert.InDelta(t, 0.85*0.3, ex.Confidence.DecisionCertainty, 1e-9)
}

func TestExplainSummaryKeepsRunesIntact(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rec := &model.Recommendation{
		FieldID:    h.field.ID,
		AgentType:  model.AgentPSPSAnticipation,
		Action:     model.ActionPreIrrigate,
		Reason:     strings.Repeat("señal de corte de energía. ", 20),
		Confidence: 0.85,
		PSPSAlert:  true,
		CreatedAt:  testNow,
	}
	require.NoError(t, h.store.CreateRecommendation(ctx, rec))

	ex, err := newExplainer(h).Explain(ctx, rec.ID)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(ex.Summary))
	assert.Equal(t, 200, utf8.RuneCountInString(ex.Summary))
}

func TestExplainUnknownRecommendation(t *testing.T) {
	h := newHarness(t)

	_, err := newExplainer(h).Explain(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUrgencyMapping(t *testing.T) {
	cases := []struct {
		rec  model.Recommendation
		want string
	}{
		{model.Recommendation{Action: model.ActionPreIrrigate, PSPSAlert: true}, "critical"},
		{model.Recommendation{Action: model.ActionIrrigate}, "high"},
		{model.Recommendation{Action: model.ActionDelay}, "low"},
		{model.Recommendation{Action: model.ActionMonitor}, "medium"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, urgency(&tc.rec))
	}
}

func TestTitleAction(t *testing.T) {
	assert.Equal(t, "Pre Irrigate", titleAction(model.ActionPreIrrigate))
	assert.Equal(t, "Irrigate", titleAction(model.ActionIrrigate))
}
