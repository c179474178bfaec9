package reservations

import (
	"net/http"
	"strconv"

	"tably/internal/shared/middleware"
	"tably/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// idempotencyHeader carries the client-chosen retry token for mutating calls.
const idempotencyHeader = "Idempotency-Key"

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateReservation handles POST /api/v1/reservations
func (c *Controller) CreateReservation(ctx *gin.Context) {
	var req CreateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}
	// Clients never pre-verify themselves; only the platform sync path does.
	req.SourceVerified = false

	reservation, err := c.service.CreateReservation(
		ctx.Request.Context(),
		middleware.VenueID(ctx),
		middleware.CallerID(ctx),
		ctx.GetHeader(idempotencyHeader),
		req,
	)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Reservation created successfully", reservation)
}

// GetReservation handles GET /api/v1/reservations/:id
func (c *Controller) GetReservation(ctx *gin.Context) {
	id, ok := parseReservationID(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.GetReservation(ctx.Request.Context(), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservation retrieved successfully", reservation)
}

// ListReservations handles GET /api/v1/reservations
func (c *Controller) ListReservations(ctx *gin.Context) {
	query := ListQuery{
		Date:   ctx.Query("date"),
		Status: ctx.Query("status"),
		Page:   queryInt(ctx, "page", 1),
		Limit:  queryInt(ctx, "limit", 20),
	}

	list, total, err := c.service.ListReservations(ctx.Request.Context(), middleware.VenueID(ctx), query)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservations retrieved successfully", ReservationListResponse{
		Reservations: list,
		TotalCount:   total,
		Page:         query.Page,
		Limit:        query.Limit,
	})
}

// UpdateReservation handles PUT /api/v1/reservations/:id
func (c *Controller) UpdateReservation(ctx *gin.Context) {
	id, ok := parseReservationID(ctx)
	if !ok {
		return
	}

	var req UpdateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	reservation, err := c.service.UpdateReservation(ctx.Request.Context(), id, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservation updated successfully", reservation)
}

// UpdateStatus handles PATCH /api/v1/reservations/:id/status
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	id, ok := parseReservationID(ctx)
	if !ok {
		return
	}

	var req StatusUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	reservation, err := c.service.SetStatus(ctx.Request.Context(), id, Status(req.Status))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservation status updated successfully", reservation)
}

// SeatReservation handles POST /api/v1/reservations/:id/seat, the host-stand
// shortcut for flipping a booking to seated on walk-in.
func (c *Controller) SeatReservation(ctx *gin.Context) {
	id, ok := parseReservationID(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.SetStatus(ctx.Request.Context(), id, StatusSeated)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservation seated successfully", reservation)
}

// DeleteReservation handles DELETE /api/v1/reservations/:id
func (c *Controller) DeleteReservation(ctx *gin.Context) {
	id, ok := parseReservationID(ctx)
	if !ok {
		return
	}

	if err := c.service.DeleteReservation(ctx.Request.Context(), id); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservation deleted successfully", nil)
}

// CheckAvailability handles GET /api/v1/availability
func (c *Controller) CheckAvailability(ctx *gin.Context) {
	var req AvailabilityRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	result, err := c.service.CheckAvailability(ctx.Request.Context(), middleware.VenueID(ctx), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Availability checked successfully", result)
}

// AutoAssign handles POST /api/v1/reservations/auto-assign
func (c *Controller) AutoAssign(ctx *gin.Context) {
	var req AutoAssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	summary, err := c.service.AutoAssign(ctx.Request.Context(), middleware.VenueID(ctx), req.Date)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Auto-assignment completed", summary)
}

// CollectDeposit handles POST /api/v1/reservations/:id/deposit
func (c *Controller) CollectDeposit(ctx *gin.Context) {
	id, ok := parseReservationID(ctx)
	if !ok {
		return
	}

	var req DepositRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	reservation, err := c.service.CollectDeposit(ctx.Request.Context(), id, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Deposit collected successfully", reservation)
}

// ProcessRefund handles POST /api/v1/reservations/:id/refund
func (c *Controller) ProcessRefund(ctx *gin.Context) {
	id, ok := parseReservationID(ctx)
	if !ok {
		return
	}

	var req RefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	reservation, outcome, err := c.service.ProcessRefund(
		ctx.Request.Context(),
		middleware.CallerID(ctx),
		ctx.GetHeader(idempotencyHeader),
		id,
		req,
	)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Refund processed successfully", RefundResponse{
		Reservation: reservation,
		Outcome:     outcome,
	})
}

func parseReservationID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid reservation ID", nil, nil)
		return 0, false
	}
	return uint(id), true
}

func queryInt(ctx *gin.Context, key string, fallback int) int {
	if raw := ctx.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
