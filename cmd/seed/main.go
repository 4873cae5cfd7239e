package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/spotifood/spotifood-api/config"
	"github.com/spotifood/spotifood-api/internal/domain/entity"
	"github.com/spotifood/spotifood-api/pkg/helpers"
)

// Seeds an admin account for local development. Email and password can be
// overridden with SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := getenv("SEED_ADMIN_EMAIL", "admin@spotifood.local")
	password := getenv("SEED_ADMIN_PASSWORD", "changeme123")
	username := getenv("SEED_ADMIN_USERNAME", "admin")

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (lower(email)) DO UPDATE SET role = EXCLUDED.role, is_active = true
		RETURNING id
	`, username, email, hash, string(entity.RoleAdmin)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%d email=%s password=%s\n", id, email, password)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
