package platforms

import (
	"time"

	"github.com/google/uuid"
)

// Known booking platforms. Unknown sources are accepted but recorded verbatim
// so a new integration never drops bookings.
const (
	SourceWebsite   = "website"
	SourcePhone     = "phone"
	SourceWalkIn    = "walk_in"
	SourceOpenTable = "opentable"
	SourceResy      = "resy"
	SourceGoogle    = "google"
)

// ExternalBookingEvent is the wire format for bookings arriving from partner
// platforms over the inbound topic. Timestamps are RFC 3339.
type ExternalBookingEvent struct {
	EventID         uuid.UUID `json:"event_id"`
	Source          string    `json:"source"`
	ExternalID      string    `json:"external_booking_id"`
	VenueID         string    `json:"venue_id"`
	GuestName       string    `json:"guest_name"`
	GuestPhone      string    `json:"guest_phone"`
	GuestEmail      string    `json:"guest_email,omitempty"`
	PartySize       int       `json:"party_size"`
	StartAt         time.Time `json:"start_at"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	// Confirmed marks bookings the platform has already verified with the
	// guest; they enter the ledger as confirmed instead of pending.
	Confirmed  bool      `json:"confirmed"`
	ReceivedAt time.Time `json:"received_at"`
}
