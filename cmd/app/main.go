package main

import (
	"fmt"
	"os"

	"InsiderPulse/pkg/config"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd is the base command of the InsiderPulse binary.
var rootCmd = &cobra.Command{
	Use:   "insiderpulse",
	Short: "Insider-trading sentiment analytics",
	Long: `InsiderPulse ingests normalized insider transactions and serves
market-wide sentiment indicators, breadth, top movers, trends and the
insider-buying ticker.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
