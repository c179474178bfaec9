package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrReservationNotFound is returned by repository lookups for unknown ids.
var ErrReservationNotFound = errors.New("reservation not found")

// ListQuery filters and paginates reservation listings.
type ListQuery struct {
	Date   string // YYYY-MM-DD, optional
	Status string // optional
	Page   int
	Limit  int
}

// Repository is the reservation ledger: the single authoritative store of
// reservation records. All other components read through it; mutations flow
// exclusively through the reservation service.
type Repository interface {
	Create(ctx context.Context, reservation *Reservation) error
	GetByID(ctx context.Context, id uint) (*Reservation, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uint, status Status, cancelledAt *time.Time) error
	Delete(ctx context.Context, id uint) error

	QueryByDate(ctx context.Context, venueID string, date time.Time) ([]Reservation, error)
	QueryOverlapping(ctx context.Context, tableID uint, start, end time.Time) ([]Reservation, error)
	CountOverlapping(ctx context.Context, tableID uint, start, end time.Time) (int, error)
	List(ctx context.Context, venueID string, query ListQuery) ([]Reservation, int64, error)

	// AssignTablesBatch persists the optimizer's plan atomically; either every
	// assignment lands or none do.
	AssignTablesBatch(ctx context.Context, assignments map[uint]uint) error
}

// repository implements the Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservation ledger instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reservation *Reservation) error {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *repository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&Reservation{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status Status, cancelledAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}

	result := r.db.WithContext(ctx).Model(&Reservation{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update reservation status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Reservation{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *repository) QueryByDate(ctx context.Context, venueID string, date time.Time) ([]Reservation, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var list []Reservation
	err := r.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Where("start_at >= ? AND start_at < ?", dayStart, dayEnd).
		Order("start_at ASC, party_size DESC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations by date: %w", err)
	}
	return list, nil
}

// QueryOverlapping returns table-occupying reservations whose half-open
// interval collides with [start, end). Cancelled and no-show records never
// block a table.
func (r *repository) QueryOverlapping(ctx context.Context, tableID uint, start, end time.Time) ([]Reservation, error) {
	var list []Reservation
	err := r.db.WithContext(ctx).
		Where("table_id = ?", tableID).
		Where("status IN ?", []Status{StatusPending, StatusConfirmed, StatusSeated}).
		Where("start_at < ?", end).
		Where("start_at + (duration_minutes * interval '1 minute') > ?", start).
		Order("start_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping reservations: %w", err)
	}
	return list, nil
}

func (r *repository) CountOverlapping(ctx context.Context, tableID uint, start, end time.Time) (int, error) {
	list, err := r.QueryOverlapping(ctx, tableID, start, end)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (r *repository) List(ctx context.Context, venueID string, query ListQuery) ([]Reservation, int64, error) {
	var list []Reservation
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("venue_id = ?", venueID)

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}
	if query.Date != "" {
		if date, err := time.Parse("2006-01-02", query.Date); err == nil {
			baseQuery = baseQuery.Where("start_at >= ? AND start_at < ?", date, date.Add(24*time.Hour))
		}
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("start_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	return list, totalCount, nil
}

func (r *repository) AssignTablesBatch(ctx context.Context, assignments map[uint]uint) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for reservationID, tableID := range assignments {
			result := tx.Model(&Reservation{}).
				Where("id = ?", reservationID).
				Updates(map[string]interface{}{
					"table_id":   tableID,
					"updated_at": time.Now(),
				})
			if result.Error != nil {
				return fmt.Errorf("failed to assign table %d to reservation %d: %w", tableID, reservationID, result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrReservationNotFound
			}
		}
		return nil
	})
}
