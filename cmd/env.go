package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sagebrush-ag/fireline/internal/agent"
	"github.com/sagebrush-ag/fireline/internal/gateway"
	"github.com/sagebrush-ag/fireline/internal/policy"
	"github.com/sagebrush-ag/fireline/internal/store"
)

// appEnv holds the initialized store, gateways, and agents shared by
// the serve/recommend/sweep/metrics commands.
type appEnv struct {
	Store     store.Store
	Gateways  *gateway.Gateways
	Prefs     *policy.Resolver
	Collector *agent.Collector
	Engine    *agent.Engine
	Sweeper   *agent.Sweeper
	Reporter  *agent.Reporter
	Explainer *agent.Explainer
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "fireline.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store, gateways, and every agent. Callers should
// defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	gateways := gateway.New(cfg.Gateway, nil)
	prefs := policy.NewResolver(st)
	collector := agent.NewCollector(st, gateways, nil)
	engine := agent.NewEngine(st, collector, cfg.Policy, nil)
	sweeper := agent.NewSweeper(st, gateways, prefs, agent.NewSeenEvents(0, 0, nil), nil)
	reporter := agent.NewReporter(st, gateways, prefs, nil)
	explainer := agent.NewExplainer(st, collector, engine)

	return &appEnv{
		Store:     st,
		Gateways:  gateways,
		Prefs:     prefs,
		Collector: collector,
		Engine:    engine,
		Sweeper:   sweeper,
		Reporter:  reporter,
		Explainer: explainer,
	}, nil
}
