package routes

import (
	"kazi_connect/internal/controllers"

	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine) {
	wsRoutes := r.Group("/ws")
	{
		wsRoutes.GET("/tracking", controllers.HandleTrackingWebSocket)
	}
}
