// seed inserts development sample accounts for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"user-identity-service/internal/config"
	"user-identity-service/internal/db"
	"user-identity-service/internal/security"
	"user-identity-service/internal/user/domain"
	userrepo "user-identity-service/internal/user/repository"
)

const (
	devUserEmail   = "dev@example.com"
	adminUserEmail = "admin@example.com"
	devPassword    = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	cipher, err := security.NewFieldCipher(cfg.FieldKey())
	if err != nil {
		log.Fatalf("field cipher: %v", err)
	}
	users := userrepo.NewPostgresRepository(conn, cipher)
	ctx := context.Background()

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	if err := users.Create(ctx, &domain.User{
		ID:           uuid.New().String(),
		Email:        devUserEmail,
		PasswordHash: passwordHash,
		UserType:     domain.UserTypeStandard,
		AdminRole:    domain.AdminRoleNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	if err := users.Create(ctx, &domain.User{
		ID:           uuid.New().String(),
		Email:        adminUserEmail,
		PasswordHash: passwordHash,
		UserType:     domain.UserTypeStandard,
		AdminRole:    domain.AdminRoleSuperadmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		log.Fatalf("create admin user: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev login: %s / %s\n", devUserEmail, devPassword)
	fmt.Printf("Admin login: %s / %s\n", adminUserEmail, devPassword)
}
