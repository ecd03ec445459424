package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stayline/stayline_realtime/controllers"
	"github.com/stayline/stayline_realtime/middleware"
)

// RegisterAuthRoutes registers login/logout and token validation
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client) {
	authController := controllers.NewAuthController(db)

	authGroup := e.Group("/api/auth")
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/validate", authController.ValidateToken)

	protectedGroup := e.Group("/api/auth")
	protectedGroup.Use(middleware.JWTMiddleware())
	protectedGroup.POST("/logout", authController.Logout)
}
