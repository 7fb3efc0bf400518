package routes

import (
	"kazi_connect/internal/controllers"
	"kazi_connect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func NotificationRoutes(r *gin.Engine) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.RequireAuth())
	{
		notifications.GET("/", controllers.ListMyNotifications)
		notifications.GET("/unread", controllers.ListMyUnreadNotifications)
		notifications.POST("/:id/read", controllers.MarkNotificationRead)
	}
}
