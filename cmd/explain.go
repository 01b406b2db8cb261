package main

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <recommendation-id>",
	Short: "Break down the factors behind a recommendation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		recID, err := uuid.Parse(args[0])
		if err != nil {
			return eris.Wrapf(err, "parse recommendation id %q", args[0])
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		explanation, err := env.Explainer.Explain(ctx, recID)
		if err != nil {
			return err
		}
		return printJSON(explanation)
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
