package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tably/internal/tables"
)

// ReservationSource exposes the single ledger query the checker needs.
// Implemented by the reservation ledger; declared here to keep this package
// free of a dependency on reservation internals.
type ReservationSource interface {
	CountOverlapping(ctx context.Context, tableID uint, start, end time.Time) (int, error)
}

// Service determines which tables are free for a requested window.
type Service interface {
	// Check returns the tables whose effective capacity seats the party and
	// whose schedule has no active reservation overlapping [start,
	// start+duration). Tables in exclude are treated as taken; the
	// assignment optimizer uses this to account for in-pass claims.
	Check(ctx context.Context, venueID string, start time.Time, durationMinutes, partySize int, exclude map[uint]bool) (*Result, error)
}

// service implements the Service interface
type service struct {
	registry tables.Service
	ledger   ReservationSource
}

// NewService creates a new availability checker instance
func NewService(registry tables.Service, ledger ReservationSource) Service {
	return &service{registry: registry, ledger: ledger}
}

func (s *service) Check(ctx context.Context, venueID string, start time.Time, durationMinutes, partySize int, exclude map[uint]bool) (*Result, error) {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	all, err := s.registry.ListTables(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	candidates := make([]CandidateTable, 0, len(all))
	for i := range all {
		table := &all[i]

		// A merged table is absorbed into its target and not separately
		// bookable; the representative carries the group capacity.
		if table.IsMerged() {
			continue
		}
		if exclude[table.ID] {
			continue
		}

		effective, err := s.registry.ResolveEffectiveCapacity(ctx, table.ID)
		if err != nil {
			return nil, err
		}
		if effective < partySize {
			continue
		}

		overlapping, err := s.ledger.CountOverlapping(ctx, table.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to check overlaps for table %d: %w", table.ID, err)
		}
		if overlapping > 0 {
			continue
		}

		candidates = append(candidates, CandidateTable{
			TableID:           table.ID,
			Number:            table.Number,
			Capacity:          table.Capacity,
			EffectiveCapacity: effective,
		})
	}

	// Tightest fit first; table id breaks ties so repeated runs are stable.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].EffectiveCapacity != candidates[j].EffectiveCapacity {
			return candidates[i].EffectiveCapacity < candidates[j].EffectiveCapacity
		}
		return candidates[i].TableID < candidates[j].TableID
	})

	// Zero matching tables is a normal empty result, not an error.
	return &Result{
		HasAvailability: len(candidates) > 0,
		AvailableTables: candidates,
	}, nil
}
