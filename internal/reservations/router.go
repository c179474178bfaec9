package reservations

import (
	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/availability", controller.CheckAvailability) // GET /api/v1/availability

	reservations := rg.Group("/reservations")
	{
		reservations.POST("", controller.CreateReservation)          // POST /api/v1/reservations
		reservations.GET("", controller.ListReservations)            // GET /api/v1/reservations
		reservations.POST("/auto-assign", controller.AutoAssign)     // POST /api/v1/reservations/auto-assign
		reservations.GET("/:id", controller.GetReservation)          // GET /api/v1/reservations/:id
		reservations.PUT("/:id", controller.UpdateReservation)       // PUT /api/v1/reservations/:id
		reservations.DELETE("/:id", controller.DeleteReservation)    // DELETE /api/v1/reservations/:id
		reservations.PATCH("/:id/status", controller.UpdateStatus)   // PATCH /api/v1/reservations/:id/status
		reservations.POST("/:id/seat", controller.SeatReservation)   // POST /api/v1/reservations/:id/seat
		reservations.POST("/:id/deposit", controller.CollectDeposit) // POST /api/v1/reservations/:id/deposit
		reservations.POST("/:id/refund", controller.ProcessRefund)   // POST /api/v1/reservations/:id/refund
	}
}
