package main

import (
	"os"

	"pattern-sphere-be/internal/config"
	"pattern-sphere-be/internal/model"
	"pattern-sphere-be/pkg/database"

	"github.com/fatih/color"
)

// Creates the catalog tables. Value tables are created by the engine when a
// feature is created, never here.
func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting catalog migration...")

	color.Yellow("Step 1: Extensions")
	// gen_random_uuid() backs the primary key defaults.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		color.Red("Warn: Failed to create pgcrypto: %v. Continuing...", err)
	}

	models := model.CatalogModels()
	color.Yellow("Step 2: Running AutoMigrate for %d tables", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	color.Green("Migration complete.")
}
