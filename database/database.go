package database

import (
	"fmt"

	"school-admin-app/internal/domain/billing"
	"school-admin-app/internal/domain/plans"
	"school-admin-app/internal/domain/schools"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects and migrates. The handle is returned, not stored in a
// package variable; callers pass it to the stores that need it.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema. Split out so the test suite can run it
// against an in-memory database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&schools.School{},
		&plans.Plan{},
		&billing.SchoolSubscription{},
		&billing.Payment{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
