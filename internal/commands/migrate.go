package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"wealthwise/internal/cli"
	"wealthwise/internal/config"
	"wealthwise/internal/storage/sqlstore"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the sqlite or postgres backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadAndValidateConfig(*configPath)
			if err != nil {
				return err
			}
			driver, dsn, err := migrationTarget(cfg)
			if err != nil {
				return err
			}
			if err := sqlstore.RunMigrations(driver, dsn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.DataBackend)
			return nil
		},
	}
}

func migrationTarget(cfg *config.Config) (sqlstore.Driver, string, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		return sqlstore.SQLite, cfg.SQLiteDBPath, nil
	case config.BackendPostgres:
		return sqlstore.Postgres, cfg.PostgresDSN, nil
	default:
		return "", "", fmt.Errorf("backend %q has no database schema", cfg.DataBackend)
	}
}
