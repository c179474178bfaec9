package database

import (
	"tably/internal/cancellation"
	"tably/internal/reservations"
	"tably/internal/tables"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&tables.Table{},
		&reservations.Reservation{},
		&reservations.IdempotencyRecord{},
		&cancellation.CancellationPolicy{},
	)
}
