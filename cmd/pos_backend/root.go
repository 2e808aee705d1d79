package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/pos_reconciliation/internal/platform/config"
	"github.com/SscSPs/pos_reconciliation/internal/platform/logging"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "pos_backend",
	Short: "Dual-currency point-of-sale reconciliation backend",
	Long: `pos_backend records sales, purchases, debts and returns in USD and IQD and keeps
the cash drawer reconciled against them.

Configuration is read from the environment and an optional .env file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime reads the configuration and installs the process logger.
func loadRuntime() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, logger, nil
}
