package main

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"readre/models"
)

var db *gorm.DB

func initDB(cfg Config) {
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	if cfg.AutoMigrate {
		migrateDB()
	}
}

// migrateDB migrates models individually so a failure on one doesn't block
// the others; permission errors are logged and ignored.
func migrateDB() {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Printf("migration warning (users): %v", err)
	}
	if err := db.AutoMigrate(&models.Blog{}); err != nil {
		log.Printf("migration warning (blogs): %v", err)
	}
	if err := db.AutoMigrate(&models.Comment{}); err != nil {
		log.Printf("migration warning (comments): %v", err)
	}
	if err := db.AutoMigrate(&models.Like{}); err != nil {
		log.Printf("migration warning (likes): %v", err)
	}
}
