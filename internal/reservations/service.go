package reservations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"tably/internal/assignment"
	"tably/internal/availability"
	"tably/internal/cancellation"
	"tably/internal/shared/apperrors"
	"tably/internal/shared/config"
	"tably/internal/tables"
	"tably/pkg/cache"
	"tably/pkg/logger"
)

// Service is the orchestration boundary for everything reservation-shaped.
// All mutations of the ledger flow through it so locking, idempotency and
// event emission happen in exactly one place.
type Service interface {
	CreateReservation(ctx context.Context, venueID, callerID, idempotencyKey string, req CreateReservationRequest) (*Reservation, error)
	GetReservation(ctx context.Context, id uint) (*Reservation, error)
	ListReservations(ctx context.Context, venueID string, query ListQuery) ([]Reservation, int64, error)
	UpdateReservation(ctx context.Context, id uint, req UpdateReservationRequest) (*Reservation, error)
	SetStatus(ctx context.Context, id uint, next Status) (*Reservation, error)
	DeleteReservation(ctx context.Context, id uint) error

	CheckAvailability(ctx context.Context, venueID string, req AvailabilityRequest) (*availability.Result, error)
	AutoAssign(ctx context.Context, venueID, date string) (*assignment.Summary, error)

	CollectDeposit(ctx context.Context, id uint, req DepositRequest) (*Reservation, error)
	ProcessRefund(ctx context.Context, callerID, idempotencyKey string, id uint, req RefundRequest) (*Reservation, *cancellation.Outcome, error)
}

// Deps bundles the collaborators the reservation service orchestrates.
type Deps struct {
	Repo      Repository
	Registry  tables.Service
	Checker   availability.Service
	Optimizer assignment.Service
	Policies  cancellation.Service
	Locker    TableLocker
	Idem      IdempotencyStore
	Publisher EventPublisher // nil disables event emission
	Cache     cache.Service  // nil disables availability caching
	Config    config.ReservationConfig
	CacheTTL  time.Duration
	Logger    *logger.Logger
}

// Idempotency operation names. Part of the store key, so a token reused
// across operations never replays the wrong outcome.
const (
	opCreateReservation = "create_reservation"
	opProcessRefund     = "process_refund"
)

type service struct {
	deps Deps
}

// NewService creates the reservation orchestrator.
func NewService(deps Deps) Service {
	if deps.Logger == nil {
		deps.Logger = logger.GetDefault()
	}
	return &service{deps: deps}
}

func (s *service) CreateReservation(ctx context.Context, venueID, callerID, idempotencyKey string, req CreateReservationRequest) (*Reservation, error) {
	if replayed, err := s.replay(ctx, callerID, idempotencyKey, opCreateReservation); replayed != nil || err != nil {
		return replayed, err
	}

	if err := validateCreate(req); err != nil {
		return nil, err
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = s.deps.Config.DefaultDurationMinutes
	}

	status := StatusPending
	if req.SourceVerified {
		// Bookings already confirmed on the originating platform skip the
		// pending step.
		status = StatusConfirmed
	}

	reservation := &Reservation{
		VenueID:         venueID,
		GuestName:       req.GuestName,
		GuestPhone:      req.GuestPhone,
		GuestEmail:      req.GuestEmail,
		PartySize:       req.PartySize,
		StartAt:         req.StartAt.UTC(),
		DurationMinutes: duration,
		Status:          status,
		BookingSource:   req.BookingSource,
		ExternalID:      req.ExternalID,
		SpecialRequests: req.SpecialRequests,
		Notes:           req.Notes,
	}

	create := func() error { return s.deps.Repo.Create(ctx, reservation) }

	if req.TableID != nil {
		if err := s.validateTableFits(ctx, *req.TableID, req.PartySize); err != nil {
			return nil, err
		}

		// Conflict check and insert happen under the table-day lock so two
		// concurrent bookings cannot both pass the overlap check.
		release, err := s.deps.Locker.Acquire(ctx, venueID, *req.TableID, reservation.Date())
		if err != nil {
			return nil, fmt.Errorf("failed to acquire table lock: %w", err)
		}
		defer release()

		if err := s.ensureTableFree(ctx, *req.TableID, reservation.StartAt, reservation.EndAt(), 0); err != nil {
			return nil, err
		}
		reservation.TableID = req.TableID
	}

	if err := create(); err != nil {
		return nil, err
	}

	s.rememberOutcome(ctx, callerID, idempotencyKey, opCreateReservation, reservation.ID)
	s.invalidateDate(ctx, venueID, reservation.Date())
	s.deps.Logger.LogReservationCreated(ctx, reservation.ID, reservation.GuestName, reservation.PartySize)
	s.publish(ctx, "reservation.created", reservation)

	return reservation, nil
}

func (s *service) GetReservation(ctx context.Context, id uint) (*Reservation, error) {
	reservation, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return nil, apperrors.NotFound("reservation %d not found", id)
		}
		return nil, err
	}
	return reservation, nil
}

func (s *service) ListReservations(ctx context.Context, venueID string, query ListQuery) ([]Reservation, int64, error) {
	return s.deps.Repo.List(ctx, venueID, query)
}

func (s *service) UpdateReservation(ctx context.Context, id uint, req UpdateReservationRequest) (*Reservation, error) {
	current, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, apperrors.InvalidState("cannot modify a %s reservation", current.Status)
	}

	updates := map[string]interface{}{}
	if req.GuestName != nil {
		updates["guest_name"] = *req.GuestName
	}
	if req.GuestPhone != nil {
		updates["guest_phone"] = *req.GuestPhone
	}
	if req.GuestEmail != nil {
		updates["guest_email"] = *req.GuestEmail
	}
	if req.SpecialRequests != nil {
		updates["special_requests"] = *req.SpecialRequests
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	// Compute the post-update occupancy facts to decide whether the table
	// schedule must be re-validated.
	newStart := current.StartAt
	if req.StartAt != nil {
		newStart = req.StartAt.UTC()
		updates["start_at"] = newStart
	}
	newDuration := current.DurationMinutes
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < 1 {
			return nil, apperrors.Validation("duration must be positive, got %d minutes", *req.DurationMinutes)
		}
		newDuration = *req.DurationMinutes
		updates["duration_minutes"] = newDuration
	}
	newParty := current.PartySize
	if req.PartySize != nil {
		if *req.PartySize < 1 {
			return nil, apperrors.Validation("party size must be at least 1")
		}
		newParty = *req.PartySize
		updates["party_size"] = newParty
	}

	newTable := current.TableID
	switch {
	case req.ClearTable:
		newTable = nil
		updates["table_id"] = nil
	case req.TableID != nil:
		newTable = req.TableID
		updates["table_id"] = *req.TableID
	}

	if len(updates) == 0 {
		return current, nil
	}

	newEnd := newStart.Add(time.Duration(newDuration) * time.Minute)
	scheduleChanged := req.StartAt != nil || req.DurationMinutes != nil || req.PartySize != nil ||
		req.ClearTable || req.TableID != nil

	if newTable != nil && scheduleChanged {
		if err := s.validateTableFits(ctx, *newTable, newParty); err != nil {
			return nil, err
		}

		release, err := s.deps.Locker.Acquire(ctx, current.VenueID, *newTable, newStart.Format("2006-01-02"))
		if err != nil {
			return nil, fmt.Errorf("failed to acquire table lock: %w", err)
		}
		defer release()

		// The reservation's own row must not block its rescheduling.
		if err := s.ensureTableFree(ctx, *newTable, newStart, newEnd, current.ID); err != nil {
			return nil, err
		}
	}

	if err := s.deps.Repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	s.invalidateDate(ctx, current.VenueID, current.Date())
	s.invalidateDate(ctx, current.VenueID, newStart.Format("2006-01-02"))

	return s.GetReservation(ctx, id)
}

func (s *service) SetStatus(ctx context.Context, id uint, next Status) (*Reservation, error) {
	if !next.IsValid() {
		return nil, apperrors.Validation("unknown status %q", next)
	}

	current, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.InvalidTransition("cannot transition reservation from %s to %s", current.Status, next)
	}

	// Status flips change whether the table is occupied, so they serialize
	// with booking attempts on the same table-day.
	if current.IsAssigned() {
		release, err := s.deps.Locker.Acquire(ctx, current.VenueID, *current.TableID, current.Date())
		if err != nil {
			return nil, fmt.Errorf("failed to acquire table lock: %w", err)
		}
		defer release()
	}

	var cancelledAt *time.Time
	if next == StatusCancelled || next == StatusNoShow {
		now := time.Now().UTC()
		cancelledAt = &now
	}

	if err := s.deps.Repo.UpdateStatus(ctx, id, next, cancelledAt); err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return nil, apperrors.NotFound("reservation %d not found", id)
		}
		return nil, err
	}

	s.invalidateDate(ctx, current.VenueID, current.Date())
	s.deps.Logger.LogStatusChanged(ctx, id, string(current.Status), string(next))

	updated, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	eventType := "reservation.status_changed"
	if next == StatusCancelled {
		eventType = "reservation.cancelled"
	}
	s.publish(ctx, eventType, updated)

	return updated, nil
}

func (s *service) DeleteReservation(ctx context.Context, id uint) error {
	current, err := s.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == StatusSeated {
		return apperrors.InvalidState("cannot delete a seated reservation; complete or cancel it first")
	}

	if err := s.deps.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return apperrors.NotFound("reservation %d not found", id)
		}
		return err
	}

	s.invalidateDate(ctx, current.VenueID, current.Date())
	return nil
}

func (s *service) CheckAvailability(ctx context.Context, venueID string, req AvailabilityRequest) (*availability.Result, error) {
	start, err := parseDateTime(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = s.deps.Config.DefaultDurationMinutes
	}

	fetch := func() (*availability.Result, error) {
		return s.deps.Checker.Check(ctx, venueID, start, duration, req.PartySize, nil)
	}

	if s.deps.Cache == nil {
		return fetch()
	}

	key := cache.BuildAvailabilityKey(venueID, req.Date, req.PartySize, duration, start.Unix())
	var result availability.Result
	err = s.deps.Cache.GetOrSet(ctx, key, s.deps.CacheTTL, func() (interface{}, error) {
		return fetch()
	}, &result)
	if err != nil {
		// A cache outage degrades to a direct check, never a failed request.
		return fetch()
	}
	return &result, nil
}

func (s *service) AutoAssign(ctx context.Context, venueID, date string) (*assignment.Summary, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, apperrors.Validation("invalid date %q, expected YYYY-MM-DD", date)
	}

	dayReservations, err := s.deps.Repo.QueryByDate(ctx, venueID, day.UTC())
	if err != nil {
		return nil, err
	}

	remaining := make([]assignment.PendingReservation, 0)
	for i := range dayReservations {
		r := &dayReservations[i]
		if r.IsAssigned() || (r.Status != StatusPending && r.Status != StatusConfirmed) {
			continue
		}
		remaining = append(remaining, assignment.PendingReservation{
			ID:              r.ID,
			StartAt:         r.StartAt,
			DurationMinutes: r.DurationMinutes,
			PartySize:       r.PartySize,
		})
	}
	total := len(remaining)
	committed := 0

	retries := s.deps.Config.AssignCommitRetries
	if retries < 1 {
		retries = 1
	}

	for attempt := 0; attempt < retries && len(remaining) > 0; attempt++ {
		plan, err := s.deps.Optimizer.Plan(ctx, venueID, remaining)
		if err != nil {
			return nil, err
		}
		if len(plan.Assignments) == 0 {
			break
		}

		invalidated, err := s.commitPlan(ctx, venueID, date, remaining, plan)
		if err != nil {
			return nil, err
		}

		committed += len(plan.Assignments) - len(invalidated)

		// Claims invalidated by a concurrent booking get another pass; the
		// plan's capacity shortfall is final for this run.
		if len(invalidated) == 0 {
			break
		}
		next := remaining[:0]
		for _, p := range remaining {
			if invalidated[p.ID] {
				next = append(next, p)
			}
		}
		remaining = next
	}

	summary := &assignment.Summary{
		AssignedCount:   committed,
		UnassignedCount: total - committed,
	}
	if total > 0 {
		summary.OptimizationScore = committed * 100 / total
	}

	s.invalidateDate(ctx, venueID, date)
	s.deps.Logger.LogAssignmentRun(ctx, date, summary.AssignedCount, summary.UnassignedCount, summary.OptimizationScore)

	return summary, nil
}

// commitPlan validates every planned claim under the table-day locks and
// persists the survivors atomically. Returns the reservation ids whose claim
// was invalidated by a conflicting write between planning and locking.
func (s *service) commitPlan(ctx context.Context, venueID, date string, pending []assignment.PendingReservation, plan *assignment.Plan) (map[uint]bool, error) {
	byID := make(map[uint]assignment.PendingReservation, len(pending))
	for _, p := range pending {
		byID[p.ID] = p
	}

	tableIDs := make([]uint, 0, len(plan.Assignments))
	for _, tableID := range plan.Assignments {
		tableIDs = append(tableIDs, tableID)
	}

	release, err := s.deps.Locker.AcquireMany(ctx, venueID, tableIDs, date)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire assignment locks: %w", err)
	}
	defer release()

	reservationIDs := make([]uint, 0, len(plan.Assignments))
	for id := range plan.Assignments {
		reservationIDs = append(reservationIDs, id)
	}
	sort.Slice(reservationIDs, func(i, j int) bool { return reservationIDs[i] < reservationIDs[j] })

	valid := make(map[uint]uint, len(plan.Assignments))
	invalidated := make(map[uint]bool)
	claimed := make(map[uint][]assignment.PendingReservation)

	for _, resID := range reservationIDs {
		tableID := plan.Assignments[resID]
		p := byID[resID]
		start, end := p.Interval()

		conflict := false
		count, err := s.deps.Repo.CountOverlapping(ctx, tableID, start, end)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			conflict = true
		}
		for _, other := range claimed[tableID] {
			os, oe := other.Interval()
			if IntervalsOverlap(start, end, os, oe) {
				conflict = true
				break
			}
		}

		if conflict {
			invalidated[resID] = true
			continue
		}
		valid[resID] = tableID
		claimed[tableID] = append(claimed[tableID], p)
	}

	if err := s.deps.Repo.AssignTablesBatch(ctx, valid); err != nil {
		return nil, err
	}
	return invalidated, nil
}

func (s *service) CollectDeposit(ctx context.Context, id uint, req DepositRequest) (*Reservation, error) {
	current, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() || current.Status == StatusCompleted {
		return nil, apperrors.InvalidState("cannot collect a deposit on a %s reservation", current.Status)
	}
	if current.DepositPaid {
		return nil, apperrors.InvalidState("deposit already collected for reservation %d", id)
	}

	updates := map[string]interface{}{
		"deposit_amount": req.Amount,
		"deposit_paid":   true,
		"deposit_method": req.PaymentMethod,
	}
	if err := s.deps.Repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.GetReservation(ctx, id)
}

func (s *service) ProcessRefund(ctx context.Context, callerID, idempotencyKey string, id uint, req RefundRequest) (*Reservation, *cancellation.Outcome, error) {
	if replayed, err := s.replay(ctx, callerID, idempotencyKey, opProcessRefund); replayed != nil || err != nil {
		if err != nil {
			return nil, nil, err
		}
		// A replayed refund reports the split already on the ledger.
		outcome := &cancellation.Outcome{
			Refundable: replayed.RefundedAmount,
			Forfeited:  replayed.DepositAmount - replayed.RefundedAmount,
		}
		return replayed, outcome, nil
	}

	current, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if current.Status != StatusCancelled && current.Status != StatusNoShow {
		return nil, nil, apperrors.InvalidState("refunds apply to cancelled or no-show reservations, not %s", current.Status)
	}
	if !current.DepositPaid || current.DepositAmount <= 0 {
		return nil, nil, apperrors.InvalidState("reservation %d has no deposit to refund", id)
	}
	if current.RefundedAt != nil {
		return nil, nil, apperrors.InvalidState("reservation %d was already refunded", id)
	}

	cancelTime := time.Now().UTC()
	if current.CancelledAt != nil {
		cancelTime = *current.CancelledAt
	}

	outcome, err := s.deps.Policies.ComputeRefund(ctx, current.VenueID, current.StartAt, cancelTime, current.DepositAmount)
	if err != nil {
		return nil, nil, err
	}

	amount := outcome.Refundable
	if req.Amount != nil {
		if !s.deps.Config.AllowManualRefundOverride && *req.Amount > outcome.Refundable {
			return nil, nil, apperrors.Validation("refund amount %.2f exceeds the policy refund %.2f", *req.Amount, outcome.Refundable)
		}
		if *req.Amount > current.DepositAmount {
			return nil, nil, apperrors.Validation("refund amount %.2f exceeds the deposit %.2f", *req.Amount, current.DepositAmount)
		}
		amount = *req.Amount
		outcome.Refundable = amount
		outcome.Forfeited = current.DepositAmount - amount
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"refunded_amount": amount,
		"refunded_at":     now,
	}
	if err := s.deps.Repo.Update(ctx, id, updates); err != nil {
		return nil, nil, err
	}

	s.rememberOutcome(ctx, callerID, idempotencyKey, opProcessRefund, id)
	s.deps.Logger.LogRefundComputed(ctx, id, outcome.Refundable, outcome.Forfeited)

	updated, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return updated, outcome, nil
}

// replay returns the reservation recorded for a previously seen idempotency
// key within the same operation, or nil when the key is fresh or absent.
func (s *service) replay(ctx context.Context, callerID, key, operation string) (*Reservation, error) {
	if callerID == "" || key == "" {
		return nil, nil
	}
	record, err := s.deps.Idem.Lookup(ctx, callerID, key, operation)
	if err != nil {
		if errors.Is(err, ErrNoIdempotencyRecord) {
			return nil, nil
		}
		return nil, err
	}
	return s.GetReservation(ctx, record.ReservationID)
}

func (s *service) rememberOutcome(ctx context.Context, callerID, key, operation string, reservationID uint) {
	if callerID == "" || key == "" {
		return
	}
	record := &IdempotencyRecord{
		CallerID:      callerID,
		Key:           key,
		Operation:     operation,
		ReservationID: reservationID,
	}
	if err := s.deps.Idem.Record(ctx, record); err != nil {
		// The operation already succeeded; a lost idempotency record only
		// weakens retry protection.
		s.deps.Logger.ErrorWithContext(ctx, "failed to record idempotency key", err, map[string]interface{}{
			"reservation_id": reservationID,
			"operation":      operation,
		})
	}
}

func (s *service) publish(ctx context.Context, eventType string, r *Reservation) {
	if s.deps.Publisher == nil {
		return
	}
	event := LifecycleEvent{
		Type:          eventType,
		VenueID:       r.VenueID,
		ReservationID: r.ID,
		Status:        string(r.Status),
		TableID:       r.TableID,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.deps.Publisher.PublishLifecycleEvent(ctx, event); err != nil {
		s.deps.Logger.ErrorWithContext(ctx, "failed to publish lifecycle event", err, map[string]interface{}{
			"reservation_id": r.ID,
			"event_type":     eventType,
		})
	}
}

func (s *service) invalidateDate(ctx context.Context, venueID, date string) {
	if s.deps.Cache == nil {
		return
	}
	patterns := []string{
		cache.AvailabilityPattern(venueID, date),
		cache.AnalyticsPattern(venueID, date),
	}
	for _, pattern := range patterns {
		if err := s.deps.Cache.DeletePattern(ctx, pattern); err != nil {
			s.deps.Logger.ErrorWithContext(ctx, "failed to invalidate cache", err, map[string]interface{}{
				"pattern": pattern,
			})
		}
	}
}

func (s *service) validateTableFits(ctx context.Context, tableID uint, partySize int) error {
	table, err := s.deps.Registry.GetTable(ctx, tableID)
	if err != nil {
		return err
	}
	if table.IsMerged() {
		return apperrors.Validation("table %d is merged into table %d and not separately bookable", tableID, *table.MergedInto)
	}
	effective, err := s.deps.Registry.ResolveEffectiveCapacity(ctx, tableID)
	if err != nil {
		return err
	}
	if effective < partySize {
		return apperrors.Validation("table %d seats %d, party of %d does not fit", tableID, effective, partySize)
	}
	return nil
}

// ensureTableFree enforces the no-overlap invariant for one table, ignoring
// the reservation identified by selfID (zero means none).
func (s *service) ensureTableFree(ctx context.Context, tableID uint, start, end time.Time, selfID uint) error {
	overlapping, err := s.deps.Repo.QueryOverlapping(ctx, tableID, start, end)
	if err != nil {
		return err
	}
	for i := range overlapping {
		if overlapping[i].ID == selfID {
			continue
		}
		return apperrors.Conflict("table %d is already reserved from %s to %s",
			tableID,
			overlapping[i].StartAt.Format(time.RFC3339),
			overlapping[i].EndAt().Format(time.RFC3339))
	}
	return nil
}

func validateCreate(req CreateReservationRequest) error {
	if req.PartySize < 1 {
		return apperrors.Validation("party size must be at least 1")
	}
	if req.GuestName == "" || req.GuestPhone == "" {
		return apperrors.Validation("guest name and phone are required")
	}
	if req.StartAt.IsZero() {
		return apperrors.Validation("start time is required")
	}
	// Zero means "use the venue default"; anything below is a caller error.
	if req.DurationMinutes < 0 {
		return apperrors.Validation("duration must be positive, got %d minutes", req.DurationMinutes)
	}
	return nil
}

func parseDateTime(date, clock string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid date/time %q %q, expected YYYY-MM-DD and HH:MM", date, clock)
	}
	return t.UTC(), nil
}
