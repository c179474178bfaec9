package tables

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrTableNotFound is returned by repository lookups for unknown table ids.
var ErrTableNotFound = errors.New("table not found")

// Repository interface defines the contract for table data operations
type Repository interface {
	CreateTable(ctx context.Context, table *Table) error
	GetTableByID(ctx context.Context, id uint) (*Table, error)
	ListTables(ctx context.Context, venueID string) ([]Table, error)
	ListMergedInto(ctx context.Context, targetID uint) ([]Table, error)
	UpdateTable(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteTable(ctx context.Context, id uint) error
}

// repository implements the Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new table repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTable(ctx context.Context, table *Table) error {
	if err := r.db.WithContext(ctx).Create(table).Error; err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (r *repository) GetTableByID(ctx context.Context, id uint) (*Table, error) {
	var table Table
	err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return &table, nil
}

func (r *repository) ListTables(ctx context.Context, venueID string) ([]Table, error) {
	var list []Table
	err := r.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("capacity ASC, number ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return list, nil
}

func (r *repository) ListMergedInto(ctx context.Context, targetID uint) ([]Table, error) {
	var list []Table
	err := r.db.WithContext(ctx).
		Where("merged_into = ?", targetID).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list merged tables: %w", err)
	}
	return list, nil
}

func (r *repository) UpdateTable(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Table{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update table: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTableNotFound
	}
	return nil
}

func (r *repository) DeleteTable(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Table{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete table: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTableNotFound
	}
	return nil
}
