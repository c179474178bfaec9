package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Repository reads reservation rows for report aggregation. Analytics never
// writes; the ledger stays the single source of truth.
type Repository interface {
	// SamplesForDate returns one row per reservation starting on the date,
	// excluding cancelled and no-show records. ActualMinutes is the measured
	// table hold for completed reservations and the booked duration otherwise.
	SamplesForDate(ctx context.Context, venueID string, dayStart, dayEnd time.Time) ([]reservationSample, error)
}

// repository implements the Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new analytics repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SamplesForDate(ctx context.Context, venueID string, dayStart, dayEnd time.Time) ([]reservationSample, error) {
	var samples []reservationSample

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			EXTRACT(HOUR FROM start_at)::int AS start_hour,
			duration_minutes,
			party_size,
			status,
			CASE
				WHEN status = 'completed' AND updated_at > start_at
					THEN EXTRACT(EPOCH FROM (updated_at - start_at)) / 60
				ELSE duration_minutes
			END AS actual_minutes
		FROM reservations
		WHERE venue_id = ?
			AND start_at >= ? AND start_at < ?
			AND status NOT IN ('cancelled', 'no_show')
		ORDER BY start_at ASC
	`, venueID, dayStart, dayEnd).Scan(&samples).Error

	if err != nil {
		return nil, fmt.Errorf("failed to query reservation samples: %w", err)
	}
	return samples, nil
}
