package reservations

import "tably/internal/cancellation"

// ReservationListResponse wraps a paginated listing.
type ReservationListResponse struct {
	Reservations []Reservation `json:"reservations"`
	TotalCount   int64         `json:"total_count"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
}

// RefundResponse pairs the updated reservation with the computed split.
type RefundResponse struct {
	Reservation *Reservation         `json:"reservation"`
	Outcome     *cancellation.Outcome `json:"refund"`
}
