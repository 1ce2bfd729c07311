package database

import (
	"shamba-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a GORM DB. An empty DSN falls back to an in-memory SQLite
// database so the store works without any backing service (dev/tests);
// otherwise Postgres. PreferSimpleProtocol avoids prepared-statement
// collisions behind connection poolers (PgBouncer and friends).
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if dsn == "" {
		return gorm.Open(sqlite.Open(":memory:"), cfg)
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), cfg)
}

// AutoMigrate creates/updates tables for every entity collection plus users.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Farmer{},
		&models.Aggregator{},
		&models.Crop{},
		&models.Order{},
		&models.Contract{},
		&models.SupplyAllocation{},
		&models.Notification{},
		&models.User{},
	)
}
