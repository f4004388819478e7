package database

import (
	"errors"
	"fmt"

	"oneclick-go/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned by the repositories when no row matches.
var ErrNotFound = errors.New("record not found")

// Initialize opens the relational store and migrates the KYC tables.
// driver is "sqlite" or "postgres".
func Initialize(driver, databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(databaseURL)
	case "postgres":
		dialector = postgres.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables this service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.KYCSubmission{},
		&models.AgentProfile{},
		&models.AuditLog{},
	)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
