package main

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sagebrush-ag/fireline/internal/model"
)

var metricsPeriod string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Water efficiency and fire risk metrics",
}

var metricsWaterCmd = &cobra.Command{
	Use:   "water <field-id>",
	Short: "Water savings for a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		fieldID, err := uuid.Parse(args[0])
		if err != nil {
			return eris.Wrapf(err, "parse field id %q", args[0])
		}
		period, err := model.ParsePeriod(metricsPeriod)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		metrics, err := env.Reporter.WaterMetrics(ctx, fieldID, period)
		if err != nil {
			return err
		}
		return printJSON(metrics)
	},
}

var metricsFarmCmd = &cobra.Command{
	Use:   "farm <farm-id>",
	Short: "Water savings aggregated across a farm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		farmID, err := uuid.Parse(args[0])
		if err != nil {
			return eris.Wrapf(err, "parse farm id %q", args[0])
		}
		period, err := model.ParsePeriod(metricsPeriod)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		summary, err := env.Reporter.FarmSummary(ctx, farmID, period)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

var metricsFireCmd = &cobra.Command{
	Use:   "fire <field-id>",
	Short: "Fire risk mitigation for a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		fieldID, err := uuid.Parse(args[0])
		if err != nil {
			return eris.Wrapf(err, "parse field id %q", args[0])
		}
		period, err := model.ParsePeriod(metricsPeriod)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		metrics, err := env.Reporter.FireRiskMetrics(ctx, fieldID, period)
		if err != nil {
			return err
		}
		return printJSON(metrics)
	},
}

func init() {
	metricsCmd.PersistentFlags().StringVar(&metricsPeriod, "period", "season", "period: week, month, season, or all")
	metricsCmd.AddCommand(metricsWaterCmd, metricsFarmCmd, metricsFireCmd)
	rootCmd.AddCommand(metricsCmd)
}
