// Package cli implements the plugwatch command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sweeney/plugwatch/internal/config"
)

const Version = "1.0.0"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "plugwatch",
	Short: "Smart plug charging automation",
	Long: `Plugwatch keeps a laptop charged sensibly through a TP-Link Kasa
smart plug. While a monitored application is running and the battery is
healthy the plug stays off; when the battery drops below the threshold,
or no monitored application is running, the plug turns on.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the per-user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// newLogger builds the process logger. The --verbose flag overrides
// the configured level.
func newLogger(level string) (*zap.Logger, error) {
	if verbose {
		level = "debug"
	}
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
