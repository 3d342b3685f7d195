// Package db opens the database connection and applies migrations and seed
// data. Postgres is the deployment driver; SQLite serves local development
// and tests.
package db

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopspring/decimal"

	"github.com/tkallas/arved/internal/config"
	"github.com/tkallas/arved/internal/models"
)

// Open connects to the configured database, retrying a few times so a
// containerized Postgres has time to come up.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}

	if cfg.Driver == "sqlite" {
		return gorm.Open(sqlite.Open(cfg.Path), gcfg)
	}

	var conn *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		conn, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err == nil {
			return conn, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect database after retries: %w", err)
}

// Migrate applies the GORM auto-migrations for all entities. Unique
// indexes on invoice number, VAT rate name and VAT rate percentage are the
// storage-level half of the uniqueness rules.
func Migrate(conn *gorm.DB) error {
	modelsToMigrate := []any{
		&models.VatRate{},
		&models.CompanySettings{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceLine{},
	}
	for _, m := range modelsToMigrate {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Seed inserts the default VAT rates and a placeholder company settings
// record when the tables are empty. Safe to run repeatedly.
func Seed(conn *gorm.DB) error {
	var rateCount int64
	if err := conn.Model(&models.VatRate{}).Count(&rateCount).Error; err != nil {
		return err
	}
	if rateCount == 0 {
		defaults := []models.VatRate{
			{Name: "Standard", Percent: decimal.NewFromInt(24), Description: "Standard VAT rate", Active: true},
			{Name: "Reduced", Percent: decimal.NewFromInt(9), Description: "Reduced VAT rate", Active: true},
			{Name: "Zero", Percent: decimal.Zero, Description: "Zero-rated supplies", Active: true},
		}
		if err := conn.Create(&defaults).Error; err != nil {
			return fmt.Errorf("seed vat rates: %w", err)
		}
	}

	var settingsCount int64
	if err := conn.Model(&models.CompanySettings{}).Count(&settingsCount).Error; err != nil {
		return err
	}
	if settingsCount == 0 {
		settings := models.CompanySettings{
			Name:            "My Company",
			DefaultTemplate: "standard",
		}
		if err := conn.Create(&settings).Error; err != nil {
			return fmt.Errorf("seed company settings: %w", err)
		}
	}
	return nil
}
