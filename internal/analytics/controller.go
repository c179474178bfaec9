package analytics

import (
	"net/http"

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

// GetTurnTimes handles GET /api/v1/analytics/turn-times?date=YYYY-MM-DD
func (c *Controller) GetTurnTimes(ctx *gin.Context) {
	date := ctx.Query("date")
	if date == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "date query parameter is required", nil, nil)
		return
	}

	report, err := c.service.TurnTimes(ctx.Request.Context(), middleware.VenueID(ctx), date)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Turn time report generated successfully", report)
}

// GetPartySizeOptimization handles GET /api/v1/analytics/party-sizes?date=YYYY-MM-DD
func (c *Controller) GetPartySizeOptimization(ctx *gin.Context) {
	date := ctx.Query("date")
	if date == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "date query parameter is required", nil, nil)
		return
	}

	report, err := c.service.PartySizeOptimization(ctx.Request.Context(), middleware.VenueID(ctx), date)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Party size report generated successfully", report)
}
