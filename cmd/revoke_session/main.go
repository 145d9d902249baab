package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"readre/models"
)

// Clears a user's stored refresh token so their next request must go back
// through Google login. Useful when a session is suspected stolen.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: go run ./cmd/revoke_session <email>")
		os.Exit(2)
	}
	email := os.Args[1]

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Fatalf("user %s not found", email)
	}
	if user.RefreshToken == nil {
		fmt.Printf("user %s (id=%d) has no active session\n", email, user.ID)
		return
	}
	if err := db.Model(&user).Update("refresh_token", nil).Error; err != nil {
		log.Fatalf("failed to revoke session: %v", err)
	}
	fmt.Printf("revoked session for %s (id=%d)\n", email, user.ID)
}
