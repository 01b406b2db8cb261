package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the recurring agent sweeps until interrupted",
	Long:  "Starts the cron scheduler: periodic irrigation evaluation for every field, PSPS monitoring, and water metrics refresh.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sched := scheduler.New(env.Store, env.Engine, env.Sweeper, env.Reporter, cfg.Scheduler)
		if err := sched.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()
		zap.L().Info("shutting down scheduler")
		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
