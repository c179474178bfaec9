package reservations

// Status is the reservation lifecycle state. Transitions are one-directional:
// pending -> confirmed -> seated -> completed, with side exits to cancelled
// and no_show reachable from pending/confirmed only.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusSeated    Status = "seated"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// IsValid checks if the reservation status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// OccupiesTable reports whether a reservation in this status blocks its
// assigned table for the duration of its interval.
func (s Status) OccupiesTable() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated:
		return true
	}
	return false
}

// CanTransitionTo checks the lifecycle graph. There is no resurrecting a
// cancelled or completed reservation.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusSeated || next == StatusCancelled || next == StatusNoShow
	case StatusConfirmed:
		return next == StatusSeated || next == StatusCancelled || next == StatusNoShow
	case StatusSeated:
		return next == StatusCompleted
	}
	return false
}

// ActiveStatuses are the statuses considered when detecting table conflicts.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusSeated}
