package reservations

import (
	"context"
	"time"
)

// Reservation is the authoritative ledger record for a booking. A reservation
// occupies its assigned table exclusively for [StartAt, StartAt+Duration) while
// its status is pending, confirmed or seated.
type Reservation struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	VenueID         string     `gorm:"type:varchar(64);index;not null" json:"venue_id"`
	GuestName       string     `gorm:"type:varchar(120);not null" json:"guest_name"`
	GuestPhone      string     `gorm:"type:varchar(40);not null" json:"guest_phone"`
	GuestEmail      string     `gorm:"type:varchar(120)" json:"guest_email,omitempty"`
	PartySize       int        `gorm:"not null;check:party_size >= 1" json:"party_size"`
	TableID         *uint      `gorm:"index" json:"table_id,omitempty"`
	StartAt         time.Time  `gorm:"index;not null" json:"start_at"`
	DurationMinutes int        `gorm:"not null;check:duration_minutes > 0" json:"duration_minutes"`
	Status          Status     `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	DepositAmount   float64    `gorm:"default:0" json:"deposit_amount"`
	DepositPaid     bool       `gorm:"default:false" json:"deposit_paid"`
	DepositMethod   string     `gorm:"type:varchar(50)" json:"deposit_method,omitempty"`
	RefundedAmount  float64    `gorm:"default:0" json:"refunded_amount"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
	BookingSource   string     `gorm:"type:varchar(50);index" json:"booking_source,omitempty"`
	ExternalID      string     `gorm:"type:varchar(120);index" json:"external_booking_id,omitempty"`
	SpecialRequests string     `json:"special_requests,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}

// TableName sets the table name for Reservation
func (Reservation) TableName() string {
	return "reservations"
}

// EndAt returns the exclusive end of the occupied interval.
func (r *Reservation) EndAt() time.Time {
	return r.StartAt.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// Date returns the service date the reservation starts on.
func (r *Reservation) Date() string {
	return r.StartAt.Format("2006-01-02")
}

// IsAssigned reports whether a table has been assigned.
func (r *Reservation) IsAssigned() bool {
	return r.TableID != nil
}

// IntervalsOverlap implements the half-open overlap check: [s1,e1) and
// [s2,e2) collide iff s1 < e2 && s2 < e1. Adjacent back-to-back bookings
// (e1 == s2) do not overlap. Comparison is on absolute timestamps, so
// intervals crossing midnight behave the same as any other.
func IntervalsOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// IdempotencyRecord stores the outcome of a previously processed mutating
// request, keyed by (caller_id, key, operation). A retried request after a
// dropped response replays the recorded outcome instead of re-executing side
// effects.
type IdempotencyRecord struct {
	ID            uint      `gorm:"primaryKey"`
	CallerID      string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_caller_key_op,priority:1"`
	Key           string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_caller_key_op,priority:2"`
	Operation     string    `gorm:"type:varchar(40);not null;uniqueIndex:ux_caller_key_op,priority:3"`
	ReservationID uint      `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	ExpiresAt     time.Time `gorm:"index"`
}

// TableName implements the GORM tabler interface.
func (IdempotencyRecord) TableName() string { return "idempotency_records" }

// LifecycleEvent is emitted on every reservation state change for consumption
// by external layers (polling or topic subscription). This service only
// exposes state; push delivery is someone else's job.
type LifecycleEvent struct {
	Type          string    `json:"type"` // reservation.created, reservation.status_changed, reservation.cancelled
	VenueID       string    `json:"venue_id"`
	ReservationID uint      `json:"reservation_id"`
	Status        string    `json:"status"`
	TableID       *uint     `json:"table_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher publishes lifecycle events. Implemented by the platforms
// package; a nil publisher disables event emission.
type EventPublisher interface {
	PublishLifecycleEvent(ctx context.Context, event LifecycleEvent) error
}
