package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tripcraft",
	Short: "Multi-agent trip planner",
	Long:  "Plans complete trips with concurrent category agents backed by live travel APIs, a static catalog, and generative fallback, then verifies the result for coherence.",
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
