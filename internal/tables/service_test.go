package tables

import (
	"context"
	"testing"
	"time"

	"tably/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository is an in-memory Repository for exercising registry logic.
type memoryRepository struct {
	nextID uint
	rows   map[uint]*Table
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1, rows: make(map[uint]*Table)}
}

func (m *memoryRepository) CreateTable(ctx context.Context, table *Table) error {
	table.ID = m.nextID
	m.nextID++
	copied := *table
	m.rows[table.ID] = &copied
	return nil
}

func (m *memoryRepository) GetTableByID(ctx context.Context, id uint) (*Table, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *memoryRepository) ListTables(ctx context.Context, venueID string) ([]Table, error) {
	var list []Table
	for _, row := range m.rows {
		if row.VenueID == venueID {
			list = append(list, *row)
		}
	}
	return list, nil
}

func (m *memoryRepository) ListMergedInto(ctx context.Context, targetID uint) ([]Table, error) {
	var list []Table
	for _, row := range m.rows {
		if row.MergedInto != nil && *row.MergedInto == targetID {
			list = append(list, *row)
		}
	}
	return list, nil
}

func (m *memoryRepository) UpdateTable(ctx context.Context, id uint, updates map[string]interface{}) error {
	row, ok := m.rows[id]
	if !ok {
		return ErrTableNotFound
	}
	if number, ok := updates["number"].(string); ok {
		row.Number = number
	}
	if capacity, ok := updates["capacity"].(int); ok {
		row.Capacity = capacity
	}
	if raw, ok := updates["merged_into"]; ok {
		switch v := raw.(type) {
		case uint:
			row.MergedInto = &v
		case nil:
			row.MergedInto = nil
		}
	}
	return nil
}

func (m *memoryRepository) DeleteTable(ctx context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return ErrTableNotFound
	}
	delete(m.rows, id)
	return nil
}

func seedFloor(t *testing.T, svc Service) (uint, uint, uint) {
	t.Helper()
	ctx := context.Background()

	t1, err := svc.CreateTable(ctx, "venue-1", CreateTableRequest{Number: "T1", Capacity: 2})
	require.NoError(t, err)
	t2, err := svc.CreateTable(ctx, "venue-1", CreateTableRequest{Number: "T2", Capacity: 4})
	require.NoError(t, err)
	t3, err := svc.CreateTable(ctx, "venue-1", CreateTableRequest{Number: "T3", Capacity: 6})
	require.NoError(t, err)
	return t1.ID, t2.ID, t3.ID
}

func TestCreateTableRejectsInvalidCapacity(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)

	_, err := svc.CreateTable(context.Background(), "venue-1", CreateTableRequest{Number: "T1", Capacity: 0})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestMergeGroupSumsEffectiveCapacity(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	ctx := context.Background()
	t1, t2, _ := seedFloor(t, svc)

	representative, err := svc.MergeGroup(ctx, "venue-1", []uint{t1, t2})
	require.NoError(t, err)
	assert.Equal(t, t1, representative.ID)

	// The representative answers for the whole group; members resolve
	// through it.
	capacity, err := svc.ResolveEffectiveCapacity(ctx, t1)
	require.NoError(t, err)
	assert.Equal(t, 6, capacity)

	capacity, err = svc.ResolveEffectiveCapacity(ctx, t2)
	require.NoError(t, err)
	assert.Equal(t, 6, capacity)

	merged, err := svc.GetTable(ctx, t2)
	require.NoError(t, err)
	require.NotNil(t, merged.MergedInto)
	assert.Equal(t, t1, *merged.MergedInto)
}

func TestMergeGroupRejectsAlreadyMergedMember(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	ctx := context.Background()
	t1, t2, t3 := seedFloor(t, svc)

	_, err := svc.MergeGroup(ctx, "venue-1", []uint{t1, t2})
	require.NoError(t, err)

	_, err = svc.MergeGroup(ctx, "venue-1", []uint{t3, t2})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestMergeGroupRejectsRepresentativeAsMember(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	ctx := context.Background()
	t1, t2, t3 := seedFloor(t, svc)

	_, err := svc.MergeGroup(ctx, "venue-1", []uint{t1, t2})
	require.NoError(t, err)

	// t1 represents a group; absorbing it into t3 would chain merges.
	_, err = svc.MergeGroup(ctx, "venue-1", []uint{t3, t1})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestMergeGroupRequiresTwoTables(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	t1, _, _ := seedFloor(t, svc)

	_, err := svc.MergeGroup(context.Background(), "venue-1", []uint{t1})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSplitMergeRestoresStandaloneCapacity(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	ctx := context.Background()
	t1, t2, _ := seedFloor(t, svc)

	_, err := svc.MergeGroup(ctx, "venue-1", []uint{t1, t2})
	require.NoError(t, err)

	require.NoError(t, svc.SplitMerge(ctx, t1))

	capacity, err := svc.ResolveEffectiveCapacity(ctx, t1)
	require.NoError(t, err)
	assert.Equal(t, 2, capacity)

	restored, err := svc.GetTable(ctx, t2)
	require.NoError(t, err)
	assert.Nil(t, restored.MergedInto)
}

type fakeOccupancy struct {
	active int
}

func (f *fakeOccupancy) CountOverlapping(ctx context.Context, tableID uint, start, end time.Time) (int, error) {
	return f.active, nil
}

func TestSplitMergeBlockedWhileGroupBooked(t *testing.T) {
	occupancy := &fakeOccupancy{active: 1}
	svc := NewService(newMemoryRepository(), occupancy)
	ctx := context.Background()
	t1, t2, _ := seedFloor(t, svc)

	_, err := svc.MergeGroup(ctx, "venue-1", []uint{t1, t2})
	require.NoError(t, err)

	err = svc.SplitMerge(ctx, t1)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))

	// Once the booking clears, the split goes through.
	occupancy.active = 0
	require.NoError(t, svc.SplitMerge(ctx, t1))
}

func TestSplitMergeRejectsNonRepresentative(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	t1, _, _ := seedFloor(t, svc)

	err := svc.SplitMerge(context.Background(), t1)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestDeleteTableBlockedWhileRepresenting(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)
	ctx := context.Background()
	t1, t2, _ := seedFloor(t, svc)

	_, err := svc.MergeGroup(ctx, "venue-1", []uint{t1, t2})
	require.NoError(t, err)

	err = svc.DeleteTable(ctx, t1)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))

	require.NoError(t, svc.SplitMerge(ctx, t1))
	require.NoError(t, svc.DeleteTable(ctx, t1))
}

func TestGetTableNotFound(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil)

	_, err := svc.GetTable(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
