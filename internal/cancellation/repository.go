package cancellation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrPolicyNotFound is returned for unknown policy ids.
var ErrPolicyNotFound = errors.New("cancellation policy not found")

// Repository interface defines the contract for policy data operations
type Repository interface {
	CreatePolicy(ctx context.Context, policy *CancellationPolicy) error
	GetPolicyByID(ctx context.Context, id uint) (*CancellationPolicy, error)
	ListPolicies(ctx context.Context, venueID string, activeOnly bool) ([]CancellationPolicy, error)
	UpdatePolicy(ctx context.Context, id uint, updates map[string]interface{}) error
	DeletePolicy(ctx context.Context, id uint) error
}

// repository implements the Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new cancellation policy repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePolicy(ctx context.Context, policy *CancellationPolicy) error {
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		return fmt.Errorf("failed to create cancellation policy: %w", err)
	}
	return nil
}

func (r *repository) GetPolicyByID(ctx context.Context, id uint) (*CancellationPolicy, error) {
	var policy CancellationPolicy
	err := r.db.WithContext(ctx).First(&policy, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to get cancellation policy: %w", err)
	}
	return &policy, nil
}

func (r *repository) ListPolicies(ctx context.Context, venueID string, activeOnly bool) ([]CancellationPolicy, error) {
	var policies []CancellationPolicy
	query := r.db.WithContext(ctx).Where("venue_id = ?", venueID)
	if activeOnly {
		query = query.Where("active = true")
	}
	err := query.Order("hours_before ASC, id ASC").Find(&policies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellation policies: %w", err)
	}
	return policies, nil
}

func (r *repository) UpdatePolicy(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&CancellationPolicy{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update cancellation policy: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPolicyNotFound
	}
	return nil
}

func (r *repository) DeletePolicy(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&CancellationPolicy{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete cancellation policy: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPolicyNotFound
	}
	return nil
}
