package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pageza/recipe-assistant/backend/config"
	"github.com/pageza/recipe-assistant/backend/internal/database"
	"github.com/pageza/recipe-assistant/backend/internal/logging"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	switch cfg.StoreBackend {
	case config.StorePostgres:
	case config.StoreSQLite:
		if *rollback {
			log.Fatal("rollback is only supported for postgres")
		}
		// OpenSQLite migrates on open
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.WithError(err).Fatal("failed to migrate sqlite store")
		}
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		log.WithField("path", cfg.SQLitePath).Info("sqlite store is up to date")
		return
	default:
		log.WithField("store", cfg.StoreBackend).Info("store has no schema, nothing to migrate")
		return
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if *rollback {
		if err := database.RollbackMigration(ctx, db); err != nil {
			log.WithError(err).Fatal("failed to roll back migration")
		}
		log.Info("rolled back last migration")
		return
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to apply migrations")
	}
	log.Info("all migrations applied")
}
