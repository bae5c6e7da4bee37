package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"factcheck/factcheck-backend/internal/database"
	"factcheck/factcheck-backend/internal/queries"
	"factcheck/factcheck-backend/internal/queries/retention"
)

var purgeDays int

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Age-based deletion of stored verification queries",
}

var retentionRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the retention scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, closeDB, err := openQueries()
		if err != nil {
			return err
		}
		defer closeDB()

		manager := retention.NewManager(service, retention.Config{
			Schedule:   cfg.Retention.Schedule,
			MaxAgeDays: cfg.Retention.MaxAgeDays,
			RunTimeout: cfg.Retention.RunTimeout,
		}, logger)
		if err := manager.Start(); err != nil {
			return err
		}
		defer manager.Stop()

		logger.Info("Retention worker started", zap.Time("next_run", manager.NextRun()))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		logger.Info("Retention worker stopping")
		return nil
	},
}

var retentionPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete queries older than --days once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, closeDB, err := openQueries()
		if err != nil {
			return err
		}
		defer closeDB()

		days := purgeDays
		if days == 0 {
			days = cfg.Retention.MaxAgeDays
		}
		deleted, err := service.Purge(cmd.Context(), days)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d queries older than %d days\n", deleted, days)
		return nil
	},
}

func init() {
	retentionPurgeCmd.Flags().IntVar(&purgeDays, "days", 0, "maximum age in days (defaults to retention.max_age_days)")

	retentionCmd.AddCommand(retentionRunCmd)
	retentionCmd.AddCommand(retentionPurgeCmd)
}

func openQueries() (*queries.Service, func(), error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}

	if err := queries.AutoMigrate(db); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return queries.NewService(queries.NewRepository(db), logger), closeDB, nil
}
