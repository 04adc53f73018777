package main

import (
	"context"

	"github.com/spf13/cobra"

	mongostore "github.com/taskflow/task-manager/internal/infrastructure/db/mongo"
	"github.com/taskflow/task-manager/internal/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}

		log := initLogger(cfg)

		store, err := mongostore.Open(cmd.Context(), mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("indexes ready")
		return nil
	},
}
