package tables

import (
	"github.com/gin-gonic/gin"
)

func SetupTableRoutes(rg *gin.RouterGroup, controller *Controller) {
	t := rg.Group("/tables")
	{
		t.POST("", controller.CreateTable)        // POST /api/v1/tables
		t.GET("", controller.ListTables)          // GET /api/v1/tables
		t.PUT("/:id", controller.UpdateTable)     // PUT /api/v1/tables/:id
		t.DELETE("/:id", controller.DeleteTable)  // DELETE /api/v1/tables/:id
		t.POST("/merge", controller.MergeGroup)   // POST /api/v1/tables/merge
		t.POST("/:id/split", controller.SplitMerge) // POST /api/v1/tables/:id/split
	}
}
