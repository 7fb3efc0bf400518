package routes

import (
	"kazi_connect/internal/controllers"
	"kazi_connect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.GET("/workers", controllers.ListWorkers)
		admin.GET("/workers/:id", controllers.GetWorker)
		admin.GET("/businesses", controllers.ListBusinesses)
		admin.GET("/businesses/:id", controllers.GetBusiness)

		admin.GET("/requests", controllers.ListAllRequests)
		admin.POST("/requests/:id/approve", controllers.ApproveRequest)
		admin.POST("/requests/:id/reject", controllers.RejectRequest)
		admin.GET("/requests/:id/candidates", controllers.ListCandidates)
		admin.POST("/requests/:id/assign", controllers.AssignWorker)
		admin.POST("/requests/:id/complete", controllers.CompleteRequest)

		admin.POST("/zones", controllers.CreateZone)
		admin.GET("/zones", controllers.ListZones)
		admin.PUT("/zones/:id", controllers.UpdateZone)
		admin.DELETE("/zones/:id", controllers.DeleteZone)

		admin.GET("/alerts", controllers.ListAlerts)
		admin.POST("/alerts/:id/read", controllers.MarkAlertRead)
		admin.GET("/locations", controllers.ListRecentLocations)
	}
}
