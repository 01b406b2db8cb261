package agent

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sagebrush-ag/fireline/internal/config"
	"github.com/sagebrush-ag/fireline/internal/gateway"
	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/policy"
	"github.com/sagebrush-ag/fireline/internal/store"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type testHarness struct {
	store    *store.SQLiteStore
	gateways *gateway.Gateways
	prefs    *policy.Resolver
	owner    *model.User
	farm     *model.Farm
	field    *model.Field
}

// newHarness wires a fresh SQLite store, the deterministic gateway
// providers, and one seeded owner/farm/field chain.
func newHarness(t *testing.T) *testHarness {
	t.Helper()
	ctx := context.Background()

	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { s.Close() })

	owner := &model.User{Email: "dana@example.com", Name: "Dana"}
	require.NoError(t, s.CreateUser(ctx, owner))

	farm := &model.Farm{OwnerID: owner.ID, Name: "Dry Creek Ranch"}
	require.NoError(t, s.CreateFarm(ctx, farm))

	lat, lon := 38.5, -122.5
	field := &model.Field{
		FarmID:       farm.ID,
		Name:         "North Block",
		CropType:     "grape",
		CropStage:    model.StageVegetative,
		AreaHectares: 2.0,
		Latitude:     &lat,
		Longitude:    &lon,
	}
	require.NoError(t, s.CreateField(ctx, field))

	return &testHarness{
		store:    s,
		gateways: gateway.New(config.GatewayConfig{}, fixedNow),
		prefs:    policy.NewResolver(s),
		owner:    owner,
		farm:     farm,
		field:    field,
	}
}

func (h *testHarness) engine() *Engine {
	collector := NewCollector(h.store, h.gateways, fixedNow)
	return NewEngine(h.store, collector, config.PolicyConfig{}, fixedNow)
}

func (h *testHarness) sweeper() *Sweeper {
	return NewSweeper(h.store, h.gateways, h.prefs, NewSeenEvents(0, 0, fixedNow), fixedNow)
}

func (h *testHarness) reporter() *Reporter {
	return NewReporter(h.store, h.gateways, h.prefs, fixedNow)
}

func floatPtr(v float64) *float64 { return &v }
