package routes

import (
	"kazi_connect/internal/controllers"
	"kazi_connect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func WorkerRoutes(r *gin.Engine) {
	worker := r.Group("/worker")
	worker.Use(middleware.RequireAuthWithRole("worker"))
	{
		worker.GET("/me", controllers.GetMyWorkerProfile)
		worker.PUT("/me", controllers.UpdateMyWorkerProfile)
		worker.GET("/assignments", controllers.ListMyAssignments)
		worker.GET("/requests", controllers.ListMatchingRequests)
	}
}
