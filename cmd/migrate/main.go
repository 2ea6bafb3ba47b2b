package main

// Run database migrations:
//   go run ./cmd/migrate
//   go run ./cmd/migrate status

import (
	"context"
	"log"
	"os"

	"docanalysis-backend/internal/bootstrap"
	"docanalysis-backend/internal/shared/config"
	"docanalysis-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	opts := db.DefaultMigrateOptions().Merge(bootstrap.PoolOptions(cfg.DBPool))
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if len(os.Args) > 1 && os.Args[1] == "status" {
		if err := db.MigrationStatus(ctx, sqlDB); err != nil {
			log.Printf("failed to read migration status: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
}
