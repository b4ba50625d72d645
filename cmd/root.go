package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pesisirlab/rob-infografis/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rob-infografis",
	Short: "Tidal-flood infographic generator",
	Long:  "Resolves affected sub-districts against the boundary dataset, renders a choropleth map, and composites the daily or monthly-recap flood infographic.",
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
