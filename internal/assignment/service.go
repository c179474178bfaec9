package assignment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tably/internal/availability"
)

// Checker is the availability query the optimizer drives. Satisfied by the
// availability service.
type Checker interface {
	Check(ctx context.Context, venueID string, start time.Time, durationMinutes, partySize int, exclude map[uint]bool) (*availability.Result, error)
}

// Service batch-assigns tables to unassigned reservations for a day,
// maximizing the count of seated reservations and secondarily minimizing
// unused capacity.
type Service interface {
	// Plan runs one greedy pass. Best-effort: an unseatable reservation is
	// reported in the shortfall, never an error.
	Plan(ctx context.Context, venueID string, pending []PendingReservation) (*Plan, error)
}

type service struct {
	checker Checker
}

// NewService creates a new assignment optimizer instance
func NewService(checker Checker) Service {
	return &service{checker: checker}
}

type claim struct {
	start time.Time
	end   time.Time
}

func (s *service) Plan(ctx context.Context, venueID string, pending []PendingReservation) (*Plan, error) {
	// Start time ascending, then party size descending so larger parties get
	// first pick among equally-timed requests; id ascending keeps repeated
	// runs on an unchanged ledger deterministic.
	ordered := make([]PendingReservation, len(pending))
	copy(ordered, pending)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].StartAt.Equal(ordered[j].StartAt) {
			return ordered[i].StartAt.Before(ordered[j].StartAt)
		}
		if ordered[i].PartySize != ordered[j].PartySize {
			return ordered[i].PartySize > ordered[j].PartySize
		}
		return ordered[i].ID < ordered[j].ID
	})

	plan := &Plan{Assignments: make(map[uint]uint, len(ordered))}
	claims := make(map[uint][]claim)

	for _, reservation := range ordered {
		start, end := reservation.Interval()

		// A table claimed earlier in this pass only blocks this reservation
		// when the claimed interval overlaps; the ledger itself has not been
		// written yet, so the checker cannot see in-pass claims.
		exclude := make(map[uint]bool)
		for tableID, intervals := range claims {
			for _, c := range intervals {
				if start.Before(c.end) && c.start.Before(end) {
					exclude[tableID] = true
					break
				}
			}
		}

		result, err := s.checker.Check(ctx, venueID, reservation.StartAt, reservation.DurationMinutes, reservation.PartySize, exclude)
		if err != nil {
			return nil, fmt.Errorf("availability check failed for reservation %d: %w", reservation.ID, err)
		}

		if !result.HasAvailability {
			plan.Unassigned = append(plan.Unassigned, reservation.ID)
			continue
		}

		// Candidates arrive tightest-fit first; take the head.
		tableID := result.AvailableTables[0].TableID
		plan.Assignments[reservation.ID] = tableID
		claims[tableID] = append(claims[tableID], claim{start: start, end: end})
	}

	plan.Summary = summarize(len(plan.Assignments), len(plan.Unassigned))
	return plan, nil
}

func summarize(assigned, unassigned int) Summary {
	total := assigned + unassigned
	score := 0
	if total > 0 {
		score = assigned * 100 / total
	}
	return Summary{
		AssignedCount:     assigned,
		UnassignedCount:   unassigned,
		OptimizationScore: score,
	}
}
