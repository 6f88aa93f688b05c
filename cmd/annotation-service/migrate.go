package main

import (
	"log"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"annotation-service/internal/config"
	"annotation-service/internal/models"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		db, err := config.ConnectDatabase(cfg)
		if err != nil {
			log.Fatalf("Database connection failed: %v", err)
		}
		if err := MigrateDatabase(db); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		log.Println("Migration complete")
	},
}

// MigrateDatabase brings the schema up to date.
func MigrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Project{},
		&models.Label{},
		&models.Object{},
	)
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
