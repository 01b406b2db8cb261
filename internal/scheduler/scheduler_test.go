package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagebrush-ag/fireline/internal/agent"
	"github.com/sagebrush-ag/fireline/internal/config"
	"github.com/sagebrush-ag/fireline/internal/gateway"
	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/policy"
	"github.com/sagebrush-ag/fireline/internal/store"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func newTestScheduler(t *testing.T, cfg config.SchedulerConfig) (*Scheduler, *store.SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { s.Close() })

	gateways := gateway.New(config.GatewayConfig{}, fixedNow)
	resolver := policy.NewResolver(s)
	collector := agent.NewCollector(s, gateways, fixedNow)
	engine := agent.NewEngine(s, collector, config.PolicyConfig{}, fixedNow)
	sweeper := agent.NewSweeper(s, gateways, resolver, agent.NewSeenEvents(0, 0, fixedNow), fixedNow)
	reporter := agent.NewReporter(s, gateways, resolver, fixedNow)

	return New(s, engine, sweeper, reporter, cfg), s
}

func seedFields(t *testing.T, s *store.SQLiteStore, n int) []model.Field {
	t.Helper()
	ctx := context.Background()

	owner := &model.User{Email: "dana@example.com", Name: "Dana"}
	require.NoError(t, s.CreateUser(ctx, owner))
	farm := &model.Farm{OwnerID: owner.ID, Name: "Dry Creek Ranch"}
	require.NoError(t, s.CreateFarm(ctx, farm))

	fields := make([]model.Field, 0, n)
	for i := 0; i < n; i++ {
		lat, lon := 38.5+float64(i)*0.01, -122.5
		field := &model.Field{
			FarmID:       farm.ID,
			Name:         "Block " + string(rune('A'+i)),
			CropType:     "grape",
			CropStage:    model.StageVegetative,
			AreaHectares: 2.0,
			Latitude:     &lat,
			Longitude:    &lon,
		}
		require.NoError(t, s.CreateField(ctx, field))
		fields = append(fields, *field)
	}
	return fields
}

func TestNewAppliesDefaults(t *testing.T) {
	sc, _ := newTestScheduler(t, config.SchedulerConfig{})

	assert.Equal(t, "0 */6 * * *", sc.cfg.IrrigationCron)
	assert.Equal(t, "*/30 * * * *", sc.cfg.PSPSCron)
	assert.Equal(t, "0 */4 * * *", sc.cfg.MetricsCron)
	assert.Equal(t, 8, sc.cfg.BatchSize)
}

func TestStartRejectsBadCron(t *testing.T) {
	sc, _ := newTestScheduler(t, config.SchedulerConfig{IrrigationCron: "not a cron"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.Error(t, sc.Start(ctx))
}

func TestIrrigationSweepCoversAllFields(t *testing.T) {
	sc, s := newTestScheduler(t, config.SchedulerConfig{BatchSize: 2})
	ctx := context.Background()
	fields := seedFields(t, s, 3)

	// A field without coordinates fails alone; the batch still runs.
	bare := &model.Field{FarmID: fields[0].FarmID, Name: "Unmapped", CropType: "grape", CropStage: model.StageSeedling}
	require.NoError(t, s.CreateField(ctx, bare))

	sc.runIrrigationSweep(ctx)

	for _, field := range fields {
		recs, err := s.ListRecommendations(ctx, store.RecommendationFilter{FieldID: &field.ID})
		require.NoError(t, err)
		assert.Len(t, recs, 1, field.Name)
	}
	recs, err := s.ListRecommendations(ctx, store.RecommendationFilter{FieldID: &bare.ID})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPSPSSweepCreatesAlerts(t *testing.T) {
	sc, s := newTestScheduler(t, config.SchedulerConfig{})
	ctx := context.Background()
	fields := seedFields(t, s, 1)

	sc.runPSPSSweep(ctx)

	alerts, err := s.ListAlerts(ctx, store.AlertFilter{FieldID: &fields[0].ID})
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestMetricsRefreshAdvancesMilestones(t *testing.T) {
	sc, s := newTestScheduler(t, config.SchedulerConfig{})
	ctx := context.Background()
	seedFields(t, s, 1)

	sc.runMetricsRefresh(ctx)

	alerts, err := s.ListAlerts(ctx, store.AlertFilter{Category: model.CategoryWaterSavedMilestone})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestStartAndStop(t *testing.T) {
	sc, _ := newTestScheduler(t, config.SchedulerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sc.Start(ctx))
	cancel()

	// Stop is idempotent once the context goroutine has fired.
	sc.Stop()
}
