package cancellation

import (
	"tably/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPolicyRoutes(rg *gin.RouterGroup, controller *Controller) {
	policies := rg.Group("/cancellation-policies")
	{
		policies.GET("", controller.ListPolicies) // GET /api/v1/cancellation-policies

		// Policy changes move money; staff tokens are not enough.
		managed := policies.Group("", middleware.RequireRole("manager", "admin"))
		{
			managed.POST("", controller.CreatePolicy)            // POST /api/v1/cancellation-policies
			managed.PUT("/:id", controller.UpdatePolicy)         // PUT /api/v1/cancellation-policies/:id
			managed.DELETE("/:id", controller.DeactivatePolicy)  // DELETE /api/v1/cancellation-policies/:id
		}
	}
}
