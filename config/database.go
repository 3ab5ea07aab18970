package config

import (
	"errors"
	"fmt"

	"github.com/Govind-619/CareFund/models"
	"github.com/Govind-619/CareFund/utils"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// InitDB opens the database connection. Driver errors are translated so the
// repository can detect unique violations.
func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("failed to connect to database: %w", err)}
	}
	return db, nil
}

// Migrate applies the SQL migrations under migrationsPath, or auto-migrates
// the ledger models when no path is configured.
func Migrate(db *gorm.DB, migrationsPath string) error {
	if migrationsPath == "" {
		utils.LogInfo("No migrations path configured, running auto-migrate")
		if err := db.AutoMigrate(
			&models.Package{},
			&models.Donation{},
			&models.Transaction{},
			&models.Payment{},
		); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	utils.LogInfo("Migrations applied from %s", migrationsPath)
	return nil
}
