// Package scheduler runs the recurring agent sweeps on cron schedules.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sagebrush-ag/fireline/internal/agent"
	"github.com/sagebrush-ag/fireline/internal/config"
	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/store"
)

// Scheduler owns the cron runner and the agents it drives.
type Scheduler struct {
	cron     *cron.Cron
	store    store.Store
	engine   *agent.Engine
	sweeper  *agent.Sweeper
	reporter *agent.Reporter
	cfg      config.SchedulerConfig
}

// New builds a Scheduler. Empty cron expressions in cfg fall back to
// the published defaults.
func New(s store.Store, engine *agent.Engine, sweeper *agent.Sweeper, reporter *agent.Reporter, cfg config.SchedulerConfig) *Scheduler {
	if cfg.IrrigationCron == "" {
		cfg.IrrigationCron = "0 */6 * * *"
	}
	if cfg.PSPSCron == "" {
		cfg.PSPSCron = "*/30 * * * *"
	}
	if cfg.MetricsCron == "" {
		cfg.MetricsCron = "0 */4 * * *"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 8
	}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		store:    s,
		engine:   engine,
		sweeper:  sweeper,
		reporter: reporter,
		cfg:      cfg,
	}
}

// Start registers the jobs and starts the cron runner. The context
// bounds each job invocation and stops the runner when cancelled.
func (sc *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"irrigation_sweep", sc.cfg.IrrigationCron, sc.runIrrigationSweep},
		{"psps_sweep", sc.cfg.PSPSCron, sc.runPSPSSweep},
		{"metrics_refresh", sc.cfg.MetricsCron, sc.runMetricsRefresh},
	}

	for _, job := range jobs {
		job := job
		_, err := sc.cron.AddFunc(job.spec, func() {
			started := time.Now()
			zap.L().Info("scheduled job starting", zap.String("job", job.name))
			job.run(ctx)
			zap.L().Info("scheduled job finished",
				zap.String("job", job.name),
				zap.Duration("elapsed", time.Since(started)))
		})
		if err != nil {
			return eris.Wrapf(err, "scheduler: schedule %s (%q)", job.name, job.spec)
		}
	}

	sc.cron.Start()
	zap.L().Info("scheduler started",
		zap.String("irrigation_cron", sc.cfg.IrrigationCron),
		zap.String("psps_cron", sc.cfg.PSPSCron),
		zap.String("metrics_cron", sc.cfg.MetricsCron),
	)

	go func() {
		<-ctx.Done()
		sc.Stop()
	}()
	return nil
}

// Stop halts the cron runner and waits for running jobs to finish.
func (sc *Scheduler) Stop() {
	<-sc.cron.Stop().Done()
	zap.L().Info("scheduler stopped")
}

// runIrrigationSweep evaluates every field with a location. Field
// failures are logged and do not stop the batch.
func (sc *Scheduler) runIrrigationSweep(ctx context.Context) {
	sc.forEachField(ctx, "irrigation_sweep", func(ctx context.Context, field model.Field) error {
		_, err := sc.engine.Recommend(ctx, field.ID)
		return err
	})
}

func (sc *Scheduler) runPSPSSweep(ctx context.Context) {
	if _, err := sc.sweeper.Run(ctx, agent.SweepOptions{}); err != nil {
		zap.L().Error("psps sweep failed", zap.Error(err))
	}
}

// runMetricsRefresh recomputes seasonal water metrics per field, which
// also advances milestone detection.
func (sc *Scheduler) runMetricsRefresh(ctx context.Context) {
	sc.forEachField(ctx, "metrics_refresh", func(ctx context.Context, field model.Field) error {
		_, err := sc.reporter.WaterMetrics(ctx, field.ID, model.PeriodSeason)
		return err
	})
}

// forEachField runs fn over all fields with bounded concurrency. Each
// field's error is logged where it happened; the batch always runs to
// completion.
func (sc *Scheduler) forEachField(ctx context.Context, job string, fn func(context.Context, model.Field) error) {
	fields, err := sc.store.ListFields(ctx, store.FieldFilter{})
	if err != nil {
		zap.L().Error("field listing failed", zap.String("job", job), zap.Error(err))
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sc.cfg.BatchSize)
	for _, field := range fields {
		field := field
		g.Go(func() error {
			if err := fn(ctx, field); err != nil {
				zap.L().Warn("field job failed",
					zap.String("job", job),
					zap.String("field_id", field.ID.String()),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
