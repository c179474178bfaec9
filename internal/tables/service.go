package tables

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tably/internal/shared/apperrors"
)

// OccupancySource reports active bookings on a table. Implemented by the
// reservation ledger; nil disables occupancy checks.
type OccupancySource interface {
	CountOverlapping(ctx context.Context, tableID uint, start, end time.Time) (int, error)
}

// Service interface defines the contract for the table registry
type Service interface {
	CreateTable(ctx context.Context, venueID string, req CreateTableRequest) (*Table, error)
	GetTable(ctx context.Context, id uint) (*Table, error)
	ListTables(ctx context.Context, venueID string) ([]Table, error)
	UpdateTable(ctx context.Context, id uint, req UpdateTableRequest) (*Table, error)
	DeleteTable(ctx context.Context, id uint) error

	// ResolveEffectiveCapacity returns the table's own seating capacity, or
	// the summed capacity of its merge group when merged.
	ResolveEffectiveCapacity(ctx context.Context, tableID uint) (int, error)

	// MergeGroup absorbs the given tables into the first id, which becomes
	// the representative carrying the summed capacity.
	MergeGroup(ctx context.Context, venueID string, tableIDs []uint) (*Table, error)

	// SplitMerge detaches every table absorbed into the representative.
	SplitMerge(ctx context.Context, targetID uint) error
}

// service implements the Service interface
type service struct {
	repo      Repository
	occupancy OccupancySource
}

// NewService creates a new table registry service instance
func NewService(repo Repository, occupancy OccupancySource) Service {
	return &service{repo: repo, occupancy: occupancy}
}

func (s *service) CreateTable(ctx context.Context, venueID string, req CreateTableRequest) (*Table, error) {
	if req.Capacity < 1 {
		return nil, apperrors.Validation("table capacity must be at least 1")
	}

	table := &Table{
		VenueID:  venueID,
		Number:   req.Number,
		Capacity: req.Capacity,
	}
	if err := s.repo.CreateTable(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return table, nil
}

func (s *service) GetTable(ctx context.Context, id uint) (*Table, error) {
	table, err := s.repo.GetTableByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return nil, apperrors.NotFound("table %d not found", id)
		}
		return nil, err
	}
	return table, nil
}

func (s *service) ListTables(ctx context.Context, venueID string) ([]Table, error) {
	return s.repo.ListTables(ctx, venueID)
}

func (s *service) UpdateTable(ctx context.Context, id uint, req UpdateTableRequest) (*Table, error) {
	updates := map[string]interface{}{}
	if req.Number != nil {
		updates["number"] = *req.Number
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, apperrors.Validation("table capacity must be at least 1")
		}
		updates["capacity"] = *req.Capacity
	}
	if len(updates) == 0 {
		return s.GetTable(ctx, id)
	}

	if err := s.repo.UpdateTable(ctx, id, updates); err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return nil, apperrors.NotFound("table %d not found", id)
		}
		return nil, err
	}
	return s.GetTable(ctx, id)
}

func (s *service) DeleteTable(ctx context.Context, id uint) error {
	absorbed, err := s.repo.ListMergedInto(ctx, id)
	if err != nil {
		return err
	}
	if len(absorbed) > 0 {
		return apperrors.InvalidState("table %d has tables merged into it; split the merge first", id)
	}

	if err := s.repo.DeleteTable(ctx, id); err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return apperrors.NotFound("table %d not found", id)
		}
		return err
	}
	return nil
}

func (s *service) ResolveEffectiveCapacity(ctx context.Context, tableID uint) (int, error) {
	table, err := s.GetTable(ctx, tableID)
	if err != nil {
		return 0, err
	}

	// A merged table resolves through its target.
	representative := table
	if table.MergedInto != nil {
		representative, err = s.GetTable(ctx, *table.MergedInto)
		if err != nil {
			return 0, err
		}
	}

	absorbed, err := s.repo.ListMergedInto(ctx, representative.ID)
	if err != nil {
		return 0, err
	}

	capacity := representative.Capacity
	for _, t := range absorbed {
		capacity += t.Capacity
	}
	return capacity, nil
}

func (s *service) MergeGroup(ctx context.Context, venueID string, tableIDs []uint) (*Table, error) {
	if len(tableIDs) < 2 {
		return nil, apperrors.Validation("a merge group needs at least two tables")
	}

	group := make([]*Table, 0, len(tableIDs))
	for _, id := range tableIDs {
		table, err := s.GetTable(ctx, id)
		if err != nil {
			return nil, err
		}
		if table.VenueID != venueID {
			return nil, apperrors.NotFound("table %d not found", id)
		}
		// No chains: a member may not already be merged, and may not have
		// tables merged into it unless it is the representative.
		if table.MergedInto != nil {
			return nil, apperrors.InvalidState("table %d is already merged into table %d", id, *table.MergedInto)
		}
		group = append(group, table)
	}

	representative := group[0]
	for _, member := range group[1:] {
		absorbed, err := s.repo.ListMergedInto(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		if len(absorbed) > 0 {
			return nil, apperrors.InvalidState("table %d already represents a merge group", member.ID)
		}
		if err := s.repo.UpdateTable(ctx, member.ID, map[string]interface{}{"merged_into": representative.ID}); err != nil {
			return nil, fmt.Errorf("failed to merge table %d: %w", member.ID, err)
		}
	}

	return s.GetTable(ctx, representative.ID)
}

func (s *service) SplitMerge(ctx context.Context, targetID uint) error {
	if _, err := s.GetTable(ctx, targetID); err != nil {
		return err
	}

	absorbed, err := s.repo.ListMergedInto(ctx, targetID)
	if err != nil {
		return err
	}
	if len(absorbed) == 0 {
		return apperrors.InvalidState("table %d is not a merge representative", targetID)
	}

	// Group bookings land on the representative. Splitting under an active
	// booking would shrink the table beneath a seated or upcoming party.
	if s.occupancy != nil {
		now := time.Now().UTC()
		count, err := s.occupancy.CountOverlapping(ctx, targetID, now, now.AddDate(1, 0, 0))
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.InvalidState("table %d has active reservations; the merge cannot be split", targetID)
		}
	}

	for _, member := range absorbed {
		if err := s.repo.UpdateTable(ctx, member.ID, map[string]interface{}{"merged_into": nil}); err != nil {
			return fmt.Errorf("failed to split table %d: %w", member.ID, err)
		}
	}
	return nil
}
