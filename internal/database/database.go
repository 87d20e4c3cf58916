package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hugh/buildtrack/internal/database/models"
	"github.com/hugh/buildtrack/internal/store"
	"github.com/hugh/buildtrack/pkg/config"
)

// ScopedTables lists every table subject to the tenant filter. Registration
// is explicit: adding a tenant-owned model means adding its table here.
func ScopedTables() []string {
	return []string{
		models.User{}.TableName(),
		models.Project{}.TableName(),
	}
}

// Connect opens the write-side connection and installs the tenant scoping
// callbacks on it.
func Connect(cfg *config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	registry := store.NewRegistry(ScopedTables()...)
	if err := registry.Install(db); err != nil {
		return nil, fmt.Errorf("installing tenant scoping: %w", err)
	}

	log.Info("connected to database", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// ConnectRead opens the read-side connection. No scoping callbacks: the read
// stores filter by an explicit tenant id and may point at a replica.
func ConnectRead(cfg *config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("connected to read database", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

func open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.SSLMode == "disable" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying db: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Project{},
	)
}
