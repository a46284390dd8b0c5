package main

import (
	"fmt"

	"github.com/monocle-dev/tracker/db"
	"github.com/monocle-dev/tracker/internal/config"
	"github.com/monocle-dev/tracker/internal/logging"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		log, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.Database, log)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		if err := db.MigrateDatabase(database); err != nil {
			return err
		}

		log.WithField("driver", cfg.Database.Driver).Info("Database migrated")
		return nil
	},
}
