package cancellation

import (
	"net/http"
	"strconv"

	"tably/internal/shared/middleware"
	"tably/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreatePolicy handles POST /api/v1/cancellation-policies
func (c *Controller) CreatePolicy(ctx *gin.Context) {
	var req PolicyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	policy, err := c.service.CreatePolicy(ctx.Request.Context(), middleware.VenueID(ctx), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Cancellation policy created successfully", policy)
}

// ListPolicies handles GET /api/v1/cancellation-policies
func (c *Controller) ListPolicies(ctx *gin.Context) {
	activeOnly := ctx.DefaultQuery("active", "false") == "true"

	policies, err := c.service.ListPolicies(ctx.Request.Context(), middleware.VenueID(ctx), activeOnly)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Cancellation policies retrieved successfully", gin.H{
		"policies": policies,
		"count":    len(policies),
	})
}

// UpdatePolicy handles PUT /api/v1/cancellation-policies/:id
func (c *Controller) UpdatePolicy(ctx *gin.Context) {
	id, ok := parsePolicyID(ctx)
	if !ok {
		return
	}

	var req PolicyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	policy, err := c.service.UpdatePolicy(ctx.Request.Context(), id, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Cancellation policy updated successfully", policy)
}

// DeactivatePolicy handles DELETE /api/v1/cancellation-policies/:id
func (c *Controller) DeactivatePolicy(ctx *gin.Context) {
	id, ok := parsePolicyID(ctx)
	if !ok {
		return
	}

	if err := c.service.DeactivatePolicy(ctx.Request.Context(), id); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Cancellation policy deactivated successfully", nil)
}

func parsePolicyID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid policy ID", nil, nil)
		return 0, false
	}
	return uint(id), true
}
