package main

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sagebrush-ag/fireline/internal/agent"
)

var (
	sweepFieldID string
	sweepFarmID  string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one PSPS monitoring pass",
	Long:  "Matches current utility shutoff events against fields, alerts owners of newly seen events, and creates pre-irrigation recommendations for predicted shutoffs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var opts agent.SweepOptions
		if sweepFieldID != "" {
			id, err := uuid.Parse(sweepFieldID)
			if err != nil {
				return eris.Wrapf(err, "parse field id %q", sweepFieldID)
			}
			opts.FieldID = &id
		}
		if sweepFarmID != "" {
			id, err := uuid.Parse(sweepFarmID)
			if err != nil {
				return eris.Wrapf(err, "parse farm id %q", sweepFarmID)
			}
			opts.FarmID = &id
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Sweeper.Run(ctx, opts)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepFieldID, "field", "", "restrict the sweep to one field")
	sweepCmd.Flags().StringVar(&sweepFarmID, "farm", "", "restrict the sweep to one farm")
	rootCmd.AddCommand(sweepCmd)
}
