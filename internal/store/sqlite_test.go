package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagebrush-ag/fireline/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func seedField(t *testing.T, s *SQLiteStore) *model.Field {
	t.Helper()
	ctx := context.Background()

	owner := &model.User{Email: uuid.New().String() + "@example.com", Name: "Dana"}
	require.NoError(t, s.CreateUser(ctx, owner))

	farm := &model.Farm{OwnerID: owner.ID, Name: "Dry Creek Ranch"}
	require.NoError(t, s.CreateFarm(ctx, farm))

	lat, lon := 38.5, -122.5
	field := &model.Field{
		FarmID:       farm.ID,
		Name:         "North Block",
		CropType:     "grape",
		CropStage:    model.StageVegetative,
		AreaHectares: 12.5,
		Latitude:     &lat,
		Longitude:    &lon,
	}
	require.NoError(t, s.CreateField(ctx, field))
	return field
}

func TestFieldRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	field := seedField(t, s)

	got, err := s.GetField(ctx, field.ID)
	require.NoError(t, err)
	assert.Equal(t, field.Name, got.Name)
	assert.Equal(t, model.StageVegetative, got.CropStage)
	require.NotNil(t, got.Latitude)
	assert.Equal(t, 38.5, *got.Latitude)

	fields, err := s.ListFields(ctx, FieldFilter{FarmID: &field.FarmID})
	require.NoError(t, err)
	assert.Len(t, fields, 1)

	_, err = s.GetField(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSensorReadings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	field := seedField(t, s)

	_, err := s.LatestReading(ctx, field.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	for i, moisture := range []float64{44, 41, 38} {
		require.NoError(t, s.InsertReading(ctx, &model.SensorReading{
			FieldID:      field.ID,
			SensorID:     "sensor-001",
			SoilMoisture: moisture,
			RecordedAt:   base.Add(time.Duration(i) * time.Hour),
		}))
	}

	latest, err := s.LatestReading(ctx, field.ID)
	require.NoError(t, err)
	assert.Equal(t, 38.0, latest.SoilMoisture)
}

func TestRecommendationLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	field := seedField(t, s)

	timing := time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
	rec := &model.Recommendation{
		FieldID:           field.ID,
		AgentType:         model.AgentFireAdaptiveIrrigation,
		Action:            model.ActionIrrigate,
		Reason:            "Soil moisture critically low (28.0%)",
		RecommendedTiming: &timing,
		ZonesAffected:     []string{"zone-1", "zone-2"},
		Confidence:        0.86,
	}
	require.NoError(t, s.CreateRecommendation(ctx, rec))

	got, err := s.GetRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionIrrigate, got.Action)
	assert.Equal(t, []string{"zone-1", "zone-2"}, got.ZonesAffected)
	assert.False(t, got.Accepted)

	// Accepting twice keeps the first timestamp and stays successful.
	first := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.AcceptRecommendation(ctx, rec.ID, first))
	require.NoError(t, s.AcceptRecommendation(ctx, rec.ID, first.Add(time.Hour)))

	got, err = s.GetRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Accepted)
	require.NotNil(t, got.AcceptedAt)
	assert.WithinDuration(t, first, *got.AcceptedAt, time.Second)

	err = s.AcceptRecommendation(ctx, uuid.New(), first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecommendationValidationAtWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	field := seedField(t, s)

	err := s.CreateRecommendation(ctx, &model.Recommendation{
		FieldID:    field.ID,
		AgentType:  model.AgentFireAdaptiveIrrigation,
		Action:     model.ActionMonitor,
		Reason:     "",
		Confidence: 0.5,
	})
	assert.Error(t, err)

	err = s.CreateRecommendation(ctx, &model.Recommendation{
		FieldID:    field.ID,
		AgentType:  model.AgentFireAdaptiveIrrigation,
		Action:     model.ActionMonitor,
		Reason:     "conditions stable",
		Confidence: 1.5,
	})
	assert.Error(t, err)
}

func TestListRecommendationsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	field := seedField(t, s)
	other := seedField(t, s)

	mk := func(fieldID uuid.UUID, action model.Action, psps bool, at time.Time) {
		require.NoError(t, s.CreateRecommendation(ctx, &model.Recommendation{
			FieldID:    fieldID,
			AgentType:  model.AgentFireAdaptiveIrrigation,
			Action:     action,
			Reason:     "test seed",
			Confidence: 0.7,
			PSPSAlert:  psps,
			CreatedAt:  at,
		}))
	}

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mk(field.ID, model.ActionIrrigate, false, base)
	mk(field.ID, model.ActionDelay, false, base.Add(time.Hour))
	mk(field.ID, model.ActionPreIrrigate, true, base.Add(2*time.Hour))
	mk(other.ID, model.ActionMonitor, false, base.Add(3*time.Hour))

	recs, err := s.ListRecommendations(ctx, RecommendationFilter{FieldID: &field.ID})
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	// Newest first.
	assert.Equal(t, model.ActionPreIrrigate, recs[0].Action)

	psps := true
	recs, err = s.ListRecommendations(ctx, RecommendationFilter{PSPSAlert: &psps})
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	since := base.Add(90 * time.Minute)
	recs, err = s.ListRecommendations(ctx, RecommendationFilter{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = s.ListRecommendations(ctx, RecommendationFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	recs, err = s.ListRecommendations(ctx, RecommendationFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestHasRecentRecommendation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	field := seedField(t, s)

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateRecommendation(ctx, &model.Recommendation{
		FieldID:    field.ID,
		AgentType:  model.AgentPSPSAnticipation,
		Action:     model.ActionPreIrrigate,
		Reason:     "shutoff predicted",
		Confidence: 0.85,
		CreatedAt:  at,
	}))

	ok, err := s.HasRecentRecommendation(ctx, field.ID, model.ActionPreIrrigate, at.Add(-6*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasRecentRecommendation(ctx, field.ID, model.ActionPreIrrigate, at.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.HasRecentRecommendation(ctx, field.ID, model.ActionDelay, at.Add(-6*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAlertLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	field := seedField(t, s)

	alert := &model.Alert{
		FieldID:   &field.ID,
		AgentType: model.AgentPSPSAnticipation,
		Category:  model.CategoryPSPSWarning,
		Severity:  model.SeverityCritical,
		Message:   "PG&E PSPS predicted for North Block",
	}
	require.NoError(t, s.CreateAlert(ctx, alert))

	assert.Error(t, s.CreateAlert(ctx, &model.Alert{
		Category: model.CategorySystem,
		Severity: model.SeverityInfo,
		Message:  "   ",
	}))

	critical, err := s.ListCriticalAlerts(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, critical, 1)

	at := time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)
	require.NoError(t, s.AcknowledgeAlert(ctx, alert.ID, at))
	require.NoError(t, s.AcknowledgeAlert(ctx, alert.ID, at.Add(time.Hour)))

	got, err := s.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, got.Acknowledged)
	require.NotNil(t, got.AcknowledgedAt)
	assert.WithinDuration(t, at, *got.AcknowledgedAt, time.Second)

	critical, err = s.ListCriticalAlerts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, critical)
}

func TestListAlertsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	field := seedField(t, s)

	mk := func(cat model.AlertCategory, sev model.Severity) {
		require.NoError(t, s.CreateAlert(ctx, &model.Alert{
			FieldID:   &field.ID,
			AgentType: model.AgentPSPSAnticipation,
			Category:  cat,
			Severity:  sev,
			Message:   "seed",
		}))
	}
	mk(model.CategoryPSPSActive, model.SeverityCritical)
	mk(model.CategoryPSPSWarning, model.SeverityWarning)
	mk(model.CategoryWaterSavedMilestone, model.SeverityInfo)

	alerts, err := s.ListAlerts(ctx, AlertFilter{Category: model.CategoryPSPSWarning})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	alerts, err = s.ListAlerts(ctx, AlertFilter{Severity: model.SeverityCritical})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	ack := false
	alerts, err = s.ListAlerts(ctx, AlertFilter{Acknowledged: &ack})
	require.NoError(t, err)
	assert.Len(t, alerts, 3)
}

func TestPreferencesUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := &model.User{Email: "owner@example.com", Name: "Riley"}
	require.NoError(t, s.CreateUser(ctx, owner))

	_, err := s.GetPreferences(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	prefs := model.DefaultPreferences()
	prefs.UserID = owner.ID
	prefs.PSPSAlertsEnabled = false
	prefs.WaterSavingsMilestoneLiters = 2500
	require.NoError(t, s.UpsertPreferences(ctx, &prefs))

	got, err := s.GetPreferences(ctx, owner.ID)
	require.NoError(t, err)
	assert.False(t, got.PSPSAlertsEnabled)
	assert.Equal(t, 2500.0, got.WaterSavingsMilestoneLiters)

	prefs.PSPSAlertsEnabled = true
	require.NoError(t, s.UpsertPreferences(ctx, &prefs))
	got, err = s.GetPreferences(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, got.PSPSAlertsEnabled)
}

func TestLimitOffset(t *testing.T) {
	limit, offset := limitOffset(0, 0)
	assert.Equal(t, defaultPageSize, limit)
	assert.Equal(t, 0, offset)

	limit, offset = limitOffset(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, _ = limitOffset(1, 1000)
	assert.Equal(t, maxPageSize, limit)
}
