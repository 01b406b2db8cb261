package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fireline",
	Short: "Fire-adaptive irrigation decision platform",
	Long:  "Balances crop water demand against wildfire risk and utility power shutoffs: collects field conditions, issues irrigation recommendations, and alerts growers ahead of PSPS events.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
