package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	// Request logging + recovery
	r.Use(ginlog.SetLogger())
	r.Use(gin.Recovery())

	AuthRoutes(r)
	WorkerRoutes(r)
	BusinessRoutes(r)
	AdminRoutes(r)
	NotificationRoutes(r)
	WebSocketRoutes(r)

	return r
}
