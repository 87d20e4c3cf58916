//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/hugh/buildtrack/internal/auth"
	"github.com/hugh/buildtrack/internal/database"
	"github.com/hugh/buildtrack/pkg/config"
	"github.com/hugh/buildtrack/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Create a demo tenant with its admin user
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, nil, logger)

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	company := os.Getenv("ADMIN_COMPANY")
	subdomain := os.Getenv("ADMIN_SUBDOMAIN")

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "Admin123!"
	}
	if company == "" {
		company = "Demo Construction Co"
	}
	if subdomain == "" {
		subdomain = "demo"
	}

	user, err := authService.RegisterCompany(context.Background(), auth.RegisterInput{
		CompanyName: company,
		Subdomain:   subdomain,
		FirstName:   "Admin",
		LastName:    "User",
		Email:       email,
		Password:    password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateIdentity) {
			fmt.Printf("Demo tenant already exists: %s\n", subdomain)
			return
		}
		log.Fatalf("failed to create demo tenant: %v", err)
	}

	token, err := jwtService.GenerateToken(user)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Printf("Demo tenant created successfully!\n")
	fmt.Printf("Company: %s (%s)\n", user.Tenant.CompanyName, user.Tenant.Subdomain)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Token: %s\n", token)
}
