package tables

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

// CreateTable handles POST /api/v1/tables
func (c *Controller) CreateTable(ctx *gin.Context) {
	var req CreateTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	table, err := c.service.CreateTable(ctx.Request.Context(), middleware.VenueID(ctx), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Table created successfully", table)
}

// ListTables handles GET /api/v1/tables
func (c *Controller) ListTables(ctx *gin.Context) {
	list, err := c.service.ListTables(ctx.Request.Context(), middleware.VenueID(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	out := make([]TableResponse, 0, len(list))
	for i := range list {
		capacity, err := c.service.ResolveEffectiveCapacity(ctx.Request.Context(), list[i].ID)
		if err != nil {
			response.Error(ctx, err)
			return
		}
		out = append(out, toTableResponse(&list[i], capacity))
	}

	response.Success(ctx, http.StatusOK, "Tables retrieved successfully", gin.H{
		"tables": out,
		"count":  len(out),
	})
}

// UpdateTable handles PUT /api/v1/tables/:id
func (c *Controller) UpdateTable(ctx *gin.Context) {
	id, ok := parseTableID(ctx)
	if !ok {
		return
	}

	var req UpdateTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	table, err := c.service.UpdateTable(ctx.Request.Context(), id, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Table updated successfully", table)
}

// DeleteTable handles DELETE /api/v1/tables/:id
func (c *Controller) DeleteTable(ctx *gin.Context) {
	id, ok := parseTableID(ctx)
	if !ok {
		return
	}

	if err := c.service.DeleteTable(ctx.Request.Context(), id); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Table deleted successfully", nil)
}

// MergeGroup handles POST /api/v1/tables/merge
func (c *Controller) MergeGroup(ctx *gin.Context) {
	var req MergeGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindingError(ctx, err)
		return
	}

	representative, err := c.service.MergeGroup(ctx.Request.Context(), middleware.VenueID(ctx), req.TableIDs)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	capacity, err := c.service.ResolveEffectiveCapacity(ctx.Request.Context(), representative.ID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Tables merged successfully", toTableResponse(representative, capacity))
}

// SplitMerge handles POST /api/v1/tables/:id/split
func (c *Controller) SplitMerge(ctx *gin.Context) {
	id, ok := parseTableID(ctx)
	if !ok {
		return
	}

	if err := c.service.SplitMerge(ctx.Request.Context(), id); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Merge group split successfully", nil)
}

func parseTableID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid table ID", nil, nil)
		return 0, false
	}
	return uint(id), true
}
