package platforms

import (
	"strings"

	"tably/internal/reservations"
	"tably/internal/shared/apperrors"
)

// verifiedSources lists platforms whose bookings arrive already confirmed
// with the guest. Their events may carry Confirmed=true.
var verifiedSources = map[string]bool{
	SourceOpenTable: true,
	SourceResy:      true,
	SourceGoogle:    true,
}

// Normalize validates an inbound platform event and converts it to the
// internal booking request shape. A returned error means the event is
// malformed and must be dropped, not retried.
func Normalize(event ExternalBookingEvent) (string, reservations.CreateReservationRequest, error) {
	venueID := strings.TrimSpace(event.VenueID)
	if venueID == "" {
		return "", reservations.CreateReservationRequest{}, apperrors.Validation("external booking missing venue id")
	}
	if strings.TrimSpace(event.GuestName) == "" || strings.TrimSpace(event.GuestPhone) == "" {
		return "", reservations.CreateReservationRequest{}, apperrors.Validation("external booking missing guest name or phone")
	}
	if event.PartySize < 1 {
		return "", reservations.CreateReservationRequest{}, apperrors.Validation("external booking has party size %d", event.PartySize)
	}
	if event.StartAt.IsZero() {
		return "", reservations.CreateReservationRequest{}, apperrors.Validation("external booking missing start time")
	}
	if strings.TrimSpace(event.ExternalID) == "" {
		return "", reservations.CreateReservationRequest{}, apperrors.Validation("external booking missing external id")
	}
	if event.DurationMinutes < 0 {
		return "", reservations.CreateReservationRequest{}, apperrors.Validation("external booking has duration %d minutes", event.DurationMinutes)
	}

	source := strings.ToLower(strings.TrimSpace(event.Source))
	if source == "" {
		source = SourceWebsite
	}

	req := reservations.CreateReservationRequest{
		GuestName:       strings.TrimSpace(event.GuestName),
		GuestPhone:      strings.TrimSpace(event.GuestPhone),
		GuestEmail:      strings.TrimSpace(event.GuestEmail),
		PartySize:       event.PartySize,
		StartAt:         event.StartAt.UTC(),
		DurationMinutes: event.DurationMinutes,
		SpecialRequests: event.SpecialRequests,
		BookingSource:   source,
		ExternalID:      event.ExternalID,
		SourceVerified:  event.Confirmed && verifiedSources[source],
	}
	return venueID, req, nil
}
