package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/stayline/stayline_realtime/config"
	"github.com/stayline/stayline_realtime/middleware"
	"github.com/stayline/stayline_realtime/routes"
	"github.com/stayline/stayline_realtime/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize Firebase (optional, for mobile push to on-call staff)
	config.InitFirebase()

	// Connect to Redis (optional, for cross-instance fan-out)
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create the realtime hub
	hub := websocket.NewHub(redisClient)
	go hub.Run()
	go hub.RunRedisBridge(context.Background())

	// Expire blacklisted tokens in the background
	go middleware.CleanupBlacklist()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "StayLine realtime gateway is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":   "healthy",
			"database": "connected",
			"clients":  hub.ClientCount(),
		})
	})

	// Register routes
	routes.RegisterAuthRoutes(e, client)
	routes.RegisterNotificationRoutes(e, client, hub)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
