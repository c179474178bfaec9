package assignment

import "time"

// PendingReservation is the slice of ledger state the optimizer needs.
type PendingReservation struct {
	ID              uint
	StartAt         time.Time
	DurationMinutes int
	PartySize       int
}

// Interval returns the half-open occupied window.
func (p PendingReservation) Interval() (time.Time, time.Time) {
	return p.StartAt, p.StartAt.Add(time.Duration(p.DurationMinutes) * time.Minute)
}

// Plan is the outcome of one in-memory optimization pass. Nothing is
// persisted here; the reservation service commits Assignments as an atomic
// batch after validating each claim under the table-day locks.
type Plan struct {
	Assignments map[uint]uint // reservation id -> table id
	Unassigned  []uint
	Summary     Summary
}

// Summary reports the pass outcome. OptimizationScore is the integer
// percentage of reservations that received a table.
type Summary struct {
	AssignedCount     int `json:"assigned_count"`
	UnassignedCount   int `json:"unassigned_count"`
	OptimizationScore int `json:"optimization_score"`
}
