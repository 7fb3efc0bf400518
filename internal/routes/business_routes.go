package routes

import (
	"kazi_connect/internal/controllers"
	"kazi_connect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func BusinessRoutes(r *gin.Engine) {
	business := r.Group("/business")
	business.Use(middleware.RequireAuthWithRole("business"))
	{
		business.GET("/me", controllers.GetMyBusiness)
		business.PUT("/me", controllers.UpdateMyBusiness)
		business.POST("/requests", controllers.CreateJobRequest)
		business.GET("/requests", controllers.ListMyRequests)
		business.DELETE("/requests/:id", controllers.CancelMyRequest)
	}
}
