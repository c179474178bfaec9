package analytics

import (
	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller *Controller) {
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/turn-times", controller.GetTurnTimes)             // GET /api/v1/analytics/turn-times
		analytics.GET("/party-sizes", controller.GetPartySizeOptimization) // GET /api/v1/analytics/party-sizes
	}
}
