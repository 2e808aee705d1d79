package main

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/pos_reconciliation/internal/platform/config"
	"github.com/SscSPs/pos_reconciliation/pkg/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down]",
	Short: "Apply or roll back database migrations",
	Long: `Applies every pending migration ("up", the default) or rolls back the latest one
("down"). Requires STORE_DRIVER=postgres and PGSQL_URL.`,
	Example: `  pos_backend migrate
  pos_backend migrate down`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{database.MigrateUp, database.MigrateDown},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.DriverPostgres {
		return fmt.Errorf("migrations need STORE_DRIVER=%s, got %q", config.DriverPostgres, cfg.StoreDriver)
	}

	direction := database.MigrateUp
	if len(args) == 1 {
		direction = args[0]
	}
	logger.Info("Running database migrations", slog.String("direction", direction), slog.String("path", cfg.MigrationsPath))
	return database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, direction)
}
