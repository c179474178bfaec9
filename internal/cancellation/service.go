package cancellation

import (
	"context"
	"errors"
	"time"

	"tably/internal/shared/apperrors"
)

// PolicyRequest represents a request to create or update a policy
type PolicyRequest struct {
	Name         string  `json:"name" binding:"required,min=2,max=120"`
	HoursBefore  int     `json:"hours_before" binding:"min=0"`
	PenaltyType  string  `json:"penalty_type" binding:"required,oneof=full_deposit partial_deposit percentage fixed_amount"`
	PenaltyValue float64 `json:"penalty_value" binding:"min=0"`
	Active       *bool   `json:"active"`
}

// Service interface defines the contract for cancellation policy logic
type Service interface {
	CreatePolicy(ctx context.Context, venueID string, req PolicyRequest) (*CancellationPolicy, error)
	ListPolicies(ctx context.Context, venueID string, activeOnly bool) ([]CancellationPolicy, error)
	UpdatePolicy(ctx context.Context, id uint, req PolicyRequest) (*CancellationPolicy, error)
	DeactivatePolicy(ctx context.Context, id uint) error

	// ComputeRefund evaluates the active policies against a cancellation
	// happening at "now" for a reservation starting at reservationStart.
	ComputeRefund(ctx context.Context, venueID string, reservationStart, now time.Time, deposit float64) (*Outcome, error)
}

// service implements the Service interface
type service struct {
	repo Repository
}

// NewService creates a new cancellation policy service instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreatePolicy(ctx context.Context, venueID string, req PolicyRequest) (*CancellationPolicy, error) {
	if err := validatePolicyRequest(req); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	policy := &CancellationPolicy{
		VenueID:      venueID,
		Name:         req.Name,
		HoursBefore:  req.HoursBefore,
		PenaltyType:  req.PenaltyType,
		PenaltyValue: req.PenaltyValue,
		Active:       active,
	}

	if err := s.repo.CreatePolicy(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

func (s *service) ListPolicies(ctx context.Context, venueID string, activeOnly bool) ([]CancellationPolicy, error) {
	return s.repo.ListPolicies(ctx, venueID, activeOnly)
}

func (s *service) UpdatePolicy(ctx context.Context, id uint, req PolicyRequest) (*CancellationPolicy, error) {
	if err := validatePolicyRequest(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":          req.Name,
		"hours_before":  req.HoursBefore,
		"penalty_type":  req.PenaltyType,
		"penalty_value": req.PenaltyValue,
		"updated_at":    time.Now(),
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if err := s.repo.UpdatePolicy(ctx, id, updates); err != nil {
		if errors.Is(err, ErrPolicyNotFound) {
			return nil, apperrors.NotFound("cancellation policy %d not found", id)
		}
		return nil, err
	}
	return s.repo.GetPolicyByID(ctx, id)
}

func (s *service) DeactivatePolicy(ctx context.Context, id uint) error {
	err := s.repo.UpdatePolicy(ctx, id, map[string]interface{}{
		"active":     false,
		"updated_at": time.Now(),
	})
	if errors.Is(err, ErrPolicyNotFound) {
		return apperrors.NotFound("cancellation policy %d not found", id)
	}
	return err
}

func (s *service) ComputeRefund(ctx context.Context, venueID string, reservationStart, now time.Time, deposit float64) (*Outcome, error) {
	policies, err := s.repo.ListPolicies(ctx, venueID, true)
	if err != nil {
		return nil, err
	}
	outcome := Evaluate(policies, reservationStart, now, deposit)
	return &outcome, nil
}

func validatePolicyRequest(req PolicyRequest) error {
	switch req.PenaltyType {
	case PenaltyPartialDeposit, PenaltyPercentage:
		if req.PenaltyValue < 0 || req.PenaltyValue > 100 {
			return apperrors.Validation("percentage penalty must be between 0 and 100")
		}
	case PenaltyFixedAmount:
		if req.PenaltyValue <= 0 {
			return apperrors.Validation("fixed penalty amount must be greater than 0")
		}
	}
	return nil
}
