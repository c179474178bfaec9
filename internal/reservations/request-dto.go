package reservations

import "time"

type CreateReservationRequest struct {
	GuestName       string    `json:"guest_name" binding:"required,min=1,max=120"`
	GuestPhone      string    `json:"guest_phone" binding:"required,min=3,max=40"`
	GuestEmail      string    `json:"guest_email" binding:"omitempty,email"`
	PartySize       int       `json:"party_size" binding:"required,min=1"`
	TableID         *uint     `json:"table_id"`
	StartAt         time.Time `json:"start_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=1"`
	SpecialRequests string    `json:"special_requests" binding:"omitempty,max=500"`
	Notes           string    `json:"notes" binding:"omitempty,max=500"`
	BookingSource   string    `json:"booking_source" binding:"omitempty,max=50"`
	ExternalID      string    `json:"external_booking_id" binding:"omitempty,max=120"`

	// Set by the platform sync boundary for pre-verified sources; not
	// accepted from API clients.
	SourceVerified bool `json:"-"`
}

type UpdateReservationRequest struct {
	GuestName       *string    `json:"guest_name" binding:"omitempty,min=1,max=120"`
	GuestPhone      *string    `json:"guest_phone" binding:"omitempty,min=3,max=40"`
	GuestEmail      *string    `json:"guest_email" binding:"omitempty,email"`
	PartySize       *int       `json:"party_size" binding:"omitempty,min=1"`
	TableID         *uint      `json:"table_id"`
	ClearTable      bool       `json:"clear_table"`
	StartAt         *time.Time `json:"start_at"`
	DurationMinutes *int       `json:"duration_minutes" binding:"omitempty,min=1"`
	SpecialRequests *string    `json:"special_requests" binding:"omitempty,max=500"`
	Notes           *string    `json:"notes" binding:"omitempty,max=500"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed seated completed cancelled no_show"`
}

type AvailabilityRequest struct {
	Date            string `form:"date" binding:"required"`
	Time            string `form:"time" binding:"required"`
	PartySize       int    `form:"party_size" binding:"required,min=1"`
	DurationMinutes int    `form:"duration_minutes" binding:"omitempty,min=1"`
}

type DepositRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,max=50"`
}

type RefundRequest struct {
	// When omitted, the cancellation policy engine computes the refund.
	Amount *float64 `json:"amount" binding:"omitempty,gt=0"`
}

type AutoAssignRequest struct {
	Date string `json:"date" binding:"required"`
}
