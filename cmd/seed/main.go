// Command seed bootstraps the first ADMIN account. Promotion requires an
// existing admin, so a fresh deployment runs this once before serving.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wak1e7/todolistapp/internal/config"
	"github.com/wak1e7/todolistapp/internal/db"
	"github.com/wak1e7/todolistapp/internal/model"
	"github.com/wak1e7/todolistapp/internal/repository"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	username := getEnv("ADMIN_USERNAME", "admin")
	email := getEnv("ADMIN_EMAIL", "admin@localhost")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)

	existing, err := users.FindByUsername(ctx, username)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			existing.Role = model.RoleAdmin
			if err := users.Save(ctx, existing); err != nil {
				log.Fatalf("Failed to promote existing user: %v", err)
			}
			log.Printf("Existing user %q promoted to admin", username)
			return
		}
		log.Printf("Admin %q already exists, nothing to do", username)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Failed to look up admin user: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user %q created", username)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
