// Seed tool: ensures the admin account exists and optionally loads demo data.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sanojDD/Balentine/internal/config"
	"github.com/sanojDD/Balentine/internal/database"
	"github.com/sanojDD/Balentine/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	adminUsername = "admin"
	adminPassword = "admin123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Initialize(cfg.DSN(), false); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	command := "admin"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "admin":
		seedAdmin()
	case "demo":
		seedAdmin()
		seedDemo()
	default:
		fmt.Println("Usage: seed [admin|demo]")
		fmt.Println("  admin - Create the default admin account if missing")
		fmt.Println("  demo  - Admin account plus a few demo users and posts")
		os.Exit(1)
	}
}

func seedAdmin() {
	var existing models.User
	err := database.DB.Where("username = ?", adminUsername).First(&existing).Error
	if err == nil {
		log.Println("Admin account already exists, skipping")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Failed to check admin account: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := models.User{
		Username:     adminUsername,
		PasswordHash: string(hashed),
		Role:         models.RoleAdmin,
		Bio:          "Platform administrator",
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	log.Printf("Admin account created (username: %s)", adminUsername)
}

func seedDemo() {
	demoUsers := []struct {
		username string
		bio      string
	}{
		{"alice", "Coffee enthusiast and amateur photographer"},
		{"bob", "Posting sunsets since 2024"},
		{"carol", "Travel, food, repeat"},
	}

	for _, du := range demoUsers {
		var existing models.User
		if err := database.DB.Where("username = ?", du.username).First(&existing).Error; err == nil {
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash demo password: %v", err)
		}

		user := models.User{
			Username:     du.username,
			PasswordHash: string(hashed),
			Bio:          du.bio,
			Role:         models.RoleUser,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Fatalf("Failed to create demo user %s: %v", du.username, err)
		}

		post := models.Post{
			UserID:  user.ID,
			Image:   fmt.Sprintf("https://picsum.photos/seed/%s/600/400", du.username),
			Caption: "First post!",
		}
		if err := database.DB.Create(&post).Error; err != nil {
			log.Fatalf("Failed to create demo post: %v", err)
		}

		log.Printf("Demo user created: %s", du.username)
	}

	log.Println("Demo data ready")
}
