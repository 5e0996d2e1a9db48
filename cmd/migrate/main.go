package main

import (
	"os"

	"intellius-chat-be/internal/config"
	"intellius-chat-be/internal/model"
	"intellius-chat-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	color.Cyan("Connecting to %s database...", cfg.Database.Driver)
	db, err := database.NewGormDB(cfg.Database.GormConfig())
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	models := model.All()
	color.Yellow("Running AutoMigrate for %d tables...", len(models))
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			color.Red("Failed to migrate %T: %v", m, err)
			os.Exit(1)
		}
		color.Green("  migrated %T", m)
	}

	color.Green("Migration complete")
}
