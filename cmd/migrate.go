package cmd

import (
	"fmt"

	"results-ingest/core/config"
	"results-ingest/core/database"
	"results-ingest/core/logger"
	"results-ingest/feature/ingest/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verifyOnly bool

// migrateCmd creates or updates the ingestion tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Migrates the ingestion tables and verifies that every model column exists afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer l.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if !verifyOnly {
			if err := repository.Migrate(db); err != nil {
				return err
			}
			l.Info("Schema migrated", zap.String("driver", cfg.Database.Driver))
		}

		missing, err := repository.VerifySchema(db)
		if err != nil {
			return fmt.Errorf("failed to verify schema: %w", err)
		}
		for table, cols := range missing {
			l.Error("Table is missing columns", zap.String("table", table), zap.Strings("columns", cols))
		}
		if len(missing) > 0 {
			return fmt.Errorf("schema verification failed for %d table(s)", len(missing))
		}

		l.Info("Schema verified")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&verifyOnly, "verify", false, "Only verify the schema, do not migrate")
	RootCmd.AddCommand(migrateCmd)
}
