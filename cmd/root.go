package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/state-dashboard/internal/config"
)

var (
	cfg *config.Config

	configPath string
	rulesPath  string
)

var rootCmd = &cobra.Command{
	Use:   "state-dashboard",
	Short: "Choropleth dashboard for state-level demographic data",
	Long:  "Joins state boundaries with demographic records, colors each state by the selected year and category, and serves the map, summary and rankings over HTTP or as files.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if rulesPath != "" {
			c.Rules.Path = rulesPath
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		zap.L().Debug("config loaded",
			zap.String("config", configPath),
			zap.String("boundaries", cfg.Data.Boundaries),
			zap.String("records", cfg.Data.Records),
			zap.String("rules", cfg.Rules.Path),
			zap.Bool("live_aqi", cfg.AQI.Enabled()),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "config file (default ./config.yaml when present)")
	f.StringVar(&rulesPath, "rules", "", "YAML color rules replacing the built-in ladders")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
