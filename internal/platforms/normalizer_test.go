package platforms

import (
	"testing"
	"time"

	"tably/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() ExternalBookingEvent {
	return ExternalBookingEvent{
		Source:     SourceOpenTable,
		ExternalID: "OT-8841",
		VenueID:    "venue-1",
		GuestName:  "Noor Haddad",
		GuestPhone: "+31-6-5555",
		GuestEmail: "noor@example.com",
		PartySize:  4,
		StartAt:    time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC),
		Confirmed:  true,
	}
}

func TestNormalizeValidEvent(t *testing.T) {
	venueID, req, err := Normalize(validEvent())
	require.NoError(t, err)

	assert.Equal(t, "venue-1", venueID)
	assert.Equal(t, "Noor Haddad", req.GuestName)
	assert.Equal(t, 4, req.PartySize)
	assert.Equal(t, SourceOpenTable, req.BookingSource)
	assert.Equal(t, "OT-8841", req.ExternalID)
	assert.True(t, req.SourceVerified)
}

func TestNormalizeTrimsAndLowercasesSource(t *testing.T) {
	event := validEvent()
	event.Source = "  OpenTable "
	event.GuestName = "  Noor Haddad  "

	_, req, err := Normalize(event)
	require.NoError(t, err)
	assert.Equal(t, SourceOpenTable, req.BookingSource)
	assert.Equal(t, "Noor Haddad", req.GuestName)
}

func TestNormalizeDefaultsSourceToWebsite(t *testing.T) {
	event := validEvent()
	event.Source = ""
	event.Confirmed = true

	_, req, err := Normalize(event)
	require.NoError(t, err)
	assert.Equal(t, SourceWebsite, req.BookingSource)
	// Website bookings are never pre-verified, confirmed flag or not.
	assert.False(t, req.SourceVerified)
}

func TestNormalizeVerifiedNeedsConfirmedFlag(t *testing.T) {
	event := validEvent()
	event.Confirmed = false

	_, req, err := Normalize(event)
	require.NoError(t, err)
	assert.False(t, req.SourceVerified)
}

func TestNormalizeVerifiedSources(t *testing.T) {
	cases := []struct {
		source   string
		verified bool
	}{
		{SourceOpenTable, true},
		{SourceResy, true},
		{SourceGoogle, true},
		{SourcePhone, false},
		{SourceWalkIn, false},
		{SourceWebsite, false},
	}

	for _, tc := range cases {
		event := validEvent()
		event.Source = tc.source
		_, req, err := Normalize(event)
		require.NoError(t, err)
		assert.Equal(t, tc.verified, req.SourceVerified, "source %s", tc.source)
	}
}

func TestNormalizeRejectsMalformedEvents(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ExternalBookingEvent)
	}{
		{"missing venue", func(e *ExternalBookingEvent) { e.VenueID = " " }},
		{"missing guest name", func(e *ExternalBookingEvent) { e.GuestName = "" }},
		{"missing guest phone", func(e *ExternalBookingEvent) { e.GuestPhone = "" }},
		{"zero party size", func(e *ExternalBookingEvent) { e.PartySize = 0 }},
		{"negative party size", func(e *ExternalBookingEvent) { e.PartySize = -2 }},
		{"missing start time", func(e *ExternalBookingEvent) { e.StartAt = time.Time{} }},
		{"missing external id", func(e *ExternalBookingEvent) { e.ExternalID = "" }},
		{"negative duration", func(e *ExternalBookingEvent) { e.DurationMinutes = -30 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := validEvent()
			tc.mutate(&event)
			_, _, err := Normalize(event)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}
