package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <field-id>",
	Short: "Evaluate a field and persist an irrigation recommendation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		fieldID, err := uuid.Parse(args[0])
		if err != nil {
			return eris.Wrapf(err, "parse field id %q", args[0])
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Engine.Recommend(ctx, fieldID)
		if err != nil {
			return err
		}
		return printJSON(rec)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}
