package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stayline/stayline_realtime/controllers"
	"github.com/stayline/stayline_realtime/middleware"
	"github.com/stayline/stayline_realtime/repositories"
	"github.com/stayline/stayline_realtime/websocket"
)

// RegisterNotificationRoutes registers the realtime endpoint and the
// notification history API
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	repo := repositories.NewNotificationRepository(db)
	notificationController := controllers.NewNotificationController(db, repo, hub)

	// Push channel; authenticates its own bearer token during the handshake
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub)
	})

	notificationGroup := e.Group("/api/notifications")
	notificationGroup.Use(middleware.JWTMiddleware())

	notificationGroup.POST("/publish", notificationController.Publish)
	notificationGroup.GET("", notificationController.List)
	notificationGroup.GET("/unread-count", notificationController.UnreadCount)
	notificationGroup.PUT("/:id/read", notificationController.MarkRead)
	notificationGroup.PUT("/read-all", notificationController.MarkAllRead)
	notificationGroup.DELETE("", notificationController.Clear)
}
