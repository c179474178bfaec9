package reservations

import (
	"context"
	"sort"
	"testing"
	"time"

	"tably/internal/assignment"
	"tably/internal/availability"
	"tably/internal/cancellation"
	"tably/internal/shared/apperrors"
	"tably/internal/shared/config"
	"tably/internal/tables"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLedger is an in-memory Repository implementation.
type memoryLedger struct {
	nextID uint
	rows   map[uint]*Reservation
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{nextID: 1, rows: make(map[uint]*Reservation)}
}

func (m *memoryLedger) Create(ctx context.Context, reservation *Reservation) error {
	reservation.ID = m.nextID
	m.nextID++
	reservation.CreatedAt = time.Now()
	if reservation.Status == "" {
		reservation.Status = StatusPending
	}
	copied := *reservation
	m.rows[reservation.ID] = &copied
	return nil
}

func (m *memoryLedger) GetByID(ctx context.Context, id uint) (*Reservation, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *memoryLedger) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	row, ok := m.rows[id]
	if !ok {
		return ErrReservationNotFound
	}
	for key, value := range updates {
		switch key {
		case "guest_name":
			row.GuestName = value.(string)
		case "guest_phone":
			row.GuestPhone = value.(string)
		case "guest_email":
			row.GuestEmail = value.(string)
		case "party_size":
			row.PartySize = value.(int)
		case "start_at":
			row.StartAt = value.(time.Time)
		case "duration_minutes":
			row.DurationMinutes = value.(int)
		case "table_id":
			switch v := value.(type) {
			case uint:
				row.TableID = &v
			case nil:
				row.TableID = nil
			}
		case "special_requests":
			row.SpecialRequests = value.(string)
		case "notes":
			row.Notes = value.(string)
		case "deposit_amount":
			row.DepositAmount = value.(float64)
		case "deposit_paid":
			row.DepositPaid = value.(bool)
		case "deposit_method":
			row.DepositMethod = value.(string)
		case "refunded_amount":
			row.RefundedAmount = value.(float64)
		case "refunded_at":
			at := value.(time.Time)
			row.RefundedAt = &at
		}
	}
	return nil
}

func (m *memoryLedger) UpdateStatus(ctx context.Context, id uint, status Status, cancelledAt *time.Time) error {
	row, ok := m.rows[id]
	if !ok {
		return ErrReservationNotFound
	}
	row.Status = status
	if cancelledAt != nil {
		row.CancelledAt = cancelledAt
	}
	return nil
}

func (m *memoryLedger) Delete(ctx context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return ErrReservationNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryLedger) QueryByDate(ctx context.Context, venueID string, date time.Time) ([]Reservation, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var list []Reservation
	for _, row := range m.rows {
		if row.VenueID == venueID && !row.StartAt.Before(dayStart) && row.StartAt.Before(dayEnd) {
			list = append(list, *row)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].StartAt.Equal(list[j].StartAt) {
			return list[i].StartAt.Before(list[j].StartAt)
		}
		if list[i].PartySize != list[j].PartySize {
			return list[i].PartySize > list[j].PartySize
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (m *memoryLedger) QueryOverlapping(ctx context.Context, tableID uint, start, end time.Time) ([]Reservation, error) {
	var list []Reservation
	for _, row := range m.rows {
		if row.TableID == nil || *row.TableID != tableID || !row.Status.OccupiesTable() {
			continue
		}
		if IntervalsOverlap(row.StartAt, row.EndAt(), start, end) {
			list = append(list, *row)
		}
	}
	return list, nil
}

func (m *memoryLedger) CountOverlapping(ctx context.Context, tableID uint, start, end time.Time) (int, error) {
	list, err := m.QueryOverlapping(ctx, tableID, start, end)
	return len(list), err
}

func (m *memoryLedger) List(ctx context.Context, venueID string, query ListQuery) ([]Reservation, int64, error) {
	var list []Reservation
	for _, row := range m.rows {
		if row.VenueID != venueID {
			continue
		}
		if query.Status != "" && string(row.Status) != query.Status {
			continue
		}
		if query.Date != "" && row.Date() != query.Date {
			continue
		}
		list = append(list, *row)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, int64(len(list)), nil
}

func (m *memoryLedger) AssignTablesBatch(ctx context.Context, assignments map[uint]uint) error {
	for reservationID, tableID := range assignments {
		row, ok := m.rows[reservationID]
		if !ok {
			return ErrReservationNotFound
		}
		id := tableID
		row.TableID = &id
	}
	return nil
}

// memoryIdemStore is an in-memory IdempotencyStore.
type memoryIdemStore struct {
	records map[string]*IdempotencyRecord
}

func newMemoryIdemStore() *memoryIdemStore {
	return &memoryIdemStore{records: make(map[string]*IdempotencyRecord)}
}

func (m *memoryIdemStore) Lookup(ctx context.Context, callerID, key, operation string) (*IdempotencyRecord, error) {
	record, ok := m.records[callerID+"/"+key+"/"+operation]
	if !ok {
		return nil, ErrNoIdempotencyRecord
	}
	return record, nil
}

func (m *memoryIdemStore) Record(ctx context.Context, record *IdempotencyRecord) error {
	m.records[record.CallerID+"/"+record.Key+"/"+record.Operation] = record
	return nil
}

// capturePublisher records every lifecycle event.
type capturePublisher struct {
	events []LifecycleEvent
}

func (p *capturePublisher) PublishLifecycleEvent(ctx context.Context, event LifecycleEvent) error {
	p.events = append(p.events, event)
	return nil
}

// fakeRegistry serves a fixed floor plan as the table registry.
type fakeRegistry struct {
	tables.Service
	floor []tables.Table
}

func (f *fakeRegistry) ListTables(ctx context.Context, venueID string) ([]tables.Table, error) {
	return f.floor, nil
}

func (f *fakeRegistry) GetTable(ctx context.Context, id uint) (*tables.Table, error) {
	for i := range f.floor {
		if f.floor[i].ID == id {
			copied := f.floor[i]
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("table %d not found", id)
}

func (f *fakeRegistry) ResolveEffectiveCapacity(ctx context.Context, tableID uint) (int, error) {
	table, err := f.GetTable(ctx, tableID)
	if err != nil {
		return 0, err
	}
	return table.Capacity, nil
}

// memoryPolicyRepo is an in-memory cancellation.Repository.
type memoryPolicyRepo struct {
	policies []cancellation.CancellationPolicy
}

func (m *memoryPolicyRepo) CreatePolicy(ctx context.Context, policy *cancellation.CancellationPolicy) error {
	policy.ID = uint(len(m.policies) + 1)
	m.policies = append(m.policies, *policy)
	return nil
}

func (m *memoryPolicyRepo) GetPolicyByID(ctx context.Context, id uint) (*cancellation.CancellationPolicy, error) {
	for i := range m.policies {
		if m.policies[i].ID == id {
			copied := m.policies[i]
			return &copied, nil
		}
	}
	return nil, cancellation.ErrPolicyNotFound
}

func (m *memoryPolicyRepo) ListPolicies(ctx context.Context, venueID string, activeOnly bool) ([]cancellation.CancellationPolicy, error) {
	var list []cancellation.CancellationPolicy
	for _, policy := range m.policies {
		if policy.VenueID != venueID {
			continue
		}
		if activeOnly && !policy.Active {
			continue
		}
		list = append(list, policy)
	}
	return list, nil
}

func (m *memoryPolicyRepo) UpdatePolicy(ctx context.Context, id uint, updates map[string]interface{}) error {
	for i := range m.policies {
		if m.policies[i].ID == id {
			if active, ok := updates["active"].(bool); ok {
				m.policies[i].Active = active
			}
			return nil
		}
	}
	return cancellation.ErrPolicyNotFound
}

func (m *memoryPolicyRepo) DeletePolicy(ctx context.Context, id uint) error {
	return cancellation.ErrPolicyNotFound
}

type testEnv struct {
	service   Service
	ledger    *memoryLedger
	publisher *capturePublisher
	policies  *memoryPolicyRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ledger := newMemoryLedger()
	publisher := &capturePublisher{}
	policyRepo := &memoryPolicyRepo{}

	registry := &fakeRegistry{floor: []tables.Table{
		{ID: 1, VenueID: "venue-1", Number: "T1", Capacity: 2},
		{ID: 2, VenueID: "venue-1", Number: "T2", Capacity: 4},
		{ID: 3, VenueID: "venue-1", Number: "T3", Capacity: 6},
	}}

	checker := availability.NewService(registry, ledger)
	optimizer := assignment.NewService(checker)
	policyService := cancellation.NewService(policyRepo)

	svc := NewService(Deps{
		Repo:      ledger,
		Registry:  registry,
		Checker:   checker,
		Optimizer: optimizer,
		Policies:  policyService,
		Locker:    NewLocalTableLocker(),
		Idem:      newMemoryIdemStore(),
		Publisher: publisher,
		Config: config.ReservationConfig{
			DefaultDurationMinutes: 90,
			BreakfastEndHour:       11,
			LunchEndHour:           16,
			AssignCommitRetries:    3,
		},
	})

	return &testEnv{service: svc, ledger: ledger, publisher: publisher, policies: policyRepo}
}

func createRequest(partySize int, start time.Time, tableID *uint) CreateReservationRequest {
	return CreateReservationRequest{
		GuestName:  "Ada Vermeer",
		GuestPhone: "+31-6-1234",
		PartySize:  partySize,
		StartAt:    start,
		TableID:    tableID,
	}
}

func TestCreateReservationDefaultsAndEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, reservation.Status)
	assert.Equal(t, 90, reservation.DurationMinutes)
	assert.Nil(t, reservation.TableID)

	require.Len(t, env.publisher.events, 1)
	assert.Equal(t, "reservation.created", env.publisher.events[0].Type)
	assert.Equal(t, reservation.ID, env.publisher.events[0].ReservationID)
}

func TestCreateReservationValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	_, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(0, start, nil))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	req := createRequest(2, start, nil)
	req.GuestName = ""
	_, err = env.service.CreateReservation(ctx, "venue-1", "staff-1", "", req)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateReservationRejectsNegativeDuration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	// A negative duration must never be coerced to the venue default.
	req := createRequest(2, start, nil)
	req.DurationMinutes = -30
	_, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", req)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, env.ledger.rows)
}

func TestUpdateReservationRejectsNonPositiveDuration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)

	for _, duration := range []int{0, -45} {
		d := duration
		_, err = env.service.UpdateReservation(ctx, reservation.ID, UpdateReservationRequest{DurationMinutes: &d})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestCreateReservationTableConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := uint(2)
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	first, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(4, start, &tableID))
	require.NoError(t, err)
	require.NotNil(t, first.TableID)

	// Overlapping window on the same table.
	req := createRequest(4, start.Add(time.Hour), &tableID)
	_, err = env.service.CreateReservation(ctx, "venue-1", "staff-1", "", req)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// Back-to-back is fine: the first booking ends 20:30.
	req = createRequest(4, start.Add(90*time.Minute), &tableID)
	_, err = env.service.CreateReservation(ctx, "venue-1", "staff-1", "", req)
	require.NoError(t, err)
}

func TestCreateReservationTableTooSmall(t *testing.T) {
	env := newTestEnv(t)
	tableID := uint(1) // seats 2
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	_, err := env.service.CreateReservation(context.Background(), "venue-1", "staff-1", "", createRequest(5, start, &tableID))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateReservationIdempotentReplay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	first, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "retry-token", createRequest(2, start, nil))
	require.NoError(t, err)

	second, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "retry-token", createRequest(2, start, nil))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, env.ledger.rows, 1)
	// Replays do not re-emit the created event.
	assert.Len(t, env.publisher.events, 1)
}

func TestSetStatusLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)

	reservation, err = env.service.SetStatus(ctx, reservation.ID, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, reservation.Status)

	reservation, err = env.service.SetStatus(ctx, reservation.ID, StatusSeated)
	require.NoError(t, err)

	reservation, err = env.service.SetStatus(ctx, reservation.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, reservation.Status)

	// Terminal states admit nothing further.
	_, err = env.service.SetStatus(ctx, reservation.ID, StatusPending)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestSetStatusRejectsIllegalJump(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)

	_, err = env.service.SetStatus(ctx, reservation.ID, StatusCompleted)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestSetStatusCancelStampsTimeAndEmits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)

	cancelled, err := env.service.SetStatus(ctx, reservation.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	last := env.publisher.events[len(env.publisher.events)-1]
	assert.Equal(t, "reservation.cancelled", last.Type)
}

func TestDeleteReservationRejectsSeated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)

	_, err = env.service.SetStatus(ctx, reservation.ID, StatusSeated)
	require.NoError(t, err)

	err = env.service.DeleteReservation(ctx, reservation.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestUpdateReservationConflictOnMove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := uint(2)
	start := time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC)

	_, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(4, start, &tableID))
	require.NoError(t, err)

	other, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(4, start, nil))
	require.NoError(t, err)

	// Assigning the occupied table to the second booking must fail.
	_, err = env.service.UpdateReservation(ctx, other.ID, UpdateReservationRequest{TableID: &tableID})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUpdateReservationRescheduleIgnoresOwnRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := uint(2)
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(4, start, &tableID))
	require.NoError(t, err)

	// Shifting the booking half an hour overlaps only itself.
	newStart := start.Add(30 * time.Minute)
	updated, err := env.service.UpdateReservation(ctx, reservation.ID, UpdateReservationRequest{StartAt: &newStart})
	require.NoError(t, err)
	assert.True(t, updated.StartAt.Equal(newStart))
}

func TestCollectDepositRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)

	updated, err := env.service.CollectDeposit(ctx, reservation.ID, DepositRequest{Amount: 50, PaymentMethod: "card"})
	require.NoError(t, err)
	assert.True(t, updated.DepositPaid)
	assert.Equal(t, 50.0, updated.DepositAmount)

	// A deposit is collected once.
	_, err = env.service.CollectDeposit(ctx, reservation.ID, DepositRequest{Amount: 50, PaymentMethod: "card"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestProcessRefundFollowsPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.policies.CreatePolicy(ctx, &cancellation.CancellationPolicy{
		VenueID:      "venue-1",
		Name:         "24h half deposit",
		HoursBefore:  24,
		PenaltyType:  cancellation.PenaltyPartialDeposit,
		PenaltyValue: 50,
		Active:       true,
	}))

	// Starts inside the 24h window.
	start := time.Now().UTC().Add(10 * time.Hour)
	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)

	_, err = env.service.CollectDeposit(ctx, reservation.ID, DepositRequest{Amount: 100, PaymentMethod: "card"})
	require.NoError(t, err)

	_, err = env.service.SetStatus(ctx, reservation.ID, StatusCancelled)
	require.NoError(t, err)

	refunded, outcome, err := env.service.ProcessRefund(ctx, "staff-1", "", reservation.ID, RefundRequest{})
	require.NoError(t, err)
	assert.Equal(t, 50.0, outcome.Refundable)
	assert.Equal(t, 50.0, outcome.Forfeited)
	assert.Equal(t, 50.0, refunded.RefundedAmount)
	require.NotNil(t, refunded.RefundedAt)

	// No double refunds.
	_, _, err = env.service.ProcessRefund(ctx, "staff-1", "", reservation.ID, RefundRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestProcessRefundExecutesWhenKeyWasUsedForCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.policies.CreatePolicy(ctx, &cancellation.CancellationPolicy{
		VenueID:      "venue-1",
		Name:         "24h half deposit",
		HoursBefore:  24,
		PenaltyType:  cancellation.PenaltyPartialDeposit,
		PenaltyValue: 50,
		Active:       true,
	}))

	// The caller reuses one token for the whole booking flow. The create
	// outcome must not shadow the refund: each operation keys separately.
	start := time.Now().UTC().Add(10 * time.Hour)
	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "shared-key", createRequest(2, start, nil))
	require.NoError(t, err)

	_, err = env.service.CollectDeposit(ctx, reservation.ID, DepositRequest{Amount: 100, PaymentMethod: "card"})
	require.NoError(t, err)
	_, err = env.service.SetStatus(ctx, reservation.ID, StatusCancelled)
	require.NoError(t, err)

	refunded, outcome, err := env.service.ProcessRefund(ctx, "staff-1", "shared-key", reservation.ID, RefundRequest{})
	require.NoError(t, err)
	assert.Equal(t, 50.0, outcome.Refundable)
	assert.Equal(t, 50.0, refunded.RefundedAmount)
	require.NotNil(t, refunded.RefundedAt)

	// And the refund replay is keyed to the refund, not the create.
	replayed, replayedOutcome, err := env.service.ProcessRefund(ctx, "staff-1", "shared-key", reservation.ID, RefundRequest{})
	require.NoError(t, err)
	assert.Equal(t, 50.0, replayedOutcome.Refundable)
	assert.Equal(t, 50.0, replayed.RefundedAmount)
}

func TestProcessRefundRequiresCancelledState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)
	_, err = env.service.CollectDeposit(ctx, reservation.ID, DepositRequest{Amount: 100, PaymentMethod: "card"})
	require.NoError(t, err)

	_, _, err = env.service.ProcessRefund(ctx, "staff-1", "", reservation.ID, RefundRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestProcessRefundManualAmountCapped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.policies.CreatePolicy(ctx, &cancellation.CancellationPolicy{
		VenueID:     "venue-1",
		Name:        "48h full deposit",
		HoursBefore: 48,
		PenaltyType: cancellation.PenaltyFullDeposit,
		Active:      true,
	}))

	start := time.Now().UTC().Add(10 * time.Hour)
	reservation, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)
	_, err = env.service.CollectDeposit(ctx, reservation.ID, DepositRequest{Amount: 100, PaymentMethod: "card"})
	require.NoError(t, err)
	_, err = env.service.SetStatus(ctx, reservation.ID, StatusCancelled)
	require.NoError(t, err)

	// The policy refunds nothing; a larger manual amount needs the override.
	amount := 30.0
	_, _, err = env.service.ProcessRefund(ctx, "staff-1", "", reservation.ID, RefundRequest{Amount: &amount})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestAutoAssignSeatsPendingReservations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	// Five parties, three tables, one shared window.
	sizes := []int{2, 2, 4, 2, 6}
	for _, size := range sizes {
		_, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(size, start, nil))
		require.NoError(t, err)
	}

	summary, err := env.service.AutoAssign(ctx, "venue-1", "2026-09-12")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.AssignedCount)
	assert.Equal(t, 2, summary.UnassignedCount)
	assert.Equal(t, 60, summary.OptimizationScore)

	assigned := 0
	for _, row := range env.ledger.rows {
		if row.TableID != nil {
			assigned++
		}
	}
	assert.Equal(t, 3, assigned)
}

func TestAutoAssignSkipsAssignedAndInactive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	tableID := uint(3)

	_, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(6, start, &tableID))
	require.NoError(t, err)

	cancelled, err := env.service.CreateReservation(ctx, "venue-1", "staff-1", "", createRequest(2, start, nil))
	require.NoError(t, err)
	_, err = env.service.SetStatus(ctx, cancelled.ID, StatusCancelled)
	require.NoError(t, err)

	summary, err := env.service.AutoAssign(ctx, "venue-1", "2026-09-12")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.AssignedCount)
	assert.Equal(t, 0, summary.UnassignedCount)
}

func TestAutoAssignInvalidDate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.AutoAssign(context.Background(), "venue-1", "12-09-2026")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCheckAvailabilityParsesWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.service.CheckAvailability(ctx, "venue-1", AvailabilityRequest{
		Date:      "2026-09-12",
		Time:      "19:00",
		PartySize: 2,
	})
	require.NoError(t, err)
	assert.True(t, result.HasAvailability)
	assert.Len(t, result.AvailableTables, 3)

	_, err = env.service.CheckAvailability(ctx, "venue-1", AvailabilityRequest{
		Date:      "2026/09/12",
		Time:      "19:00",
		PartySize: 2,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
