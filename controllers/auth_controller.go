package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stayline/stayline_realtime/config"
	"github.com/stayline/stayline_realtime/middleware"
	"github.com/stayline/stayline_realtime/models"
	"github.com/stayline/stayline_realtime/utils"
)

type AuthController struct {
	db *mongo.Client
}

func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{db: db}
}

// Login authenticates a staff member and issues the tokens used for REST
// calls and the realtime connection.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(400, map[string]interface{}{
			"success": false,
			"message": "Email and password are required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var staff models.Staff
	collection := config.GetCollection(ac.db, "staff")
	err := collection.FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&staff)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(401, map[string]interface{}{
				"success": false,
				"message": "Invalid email or password",
			})
		}
		log.Printf("Error finding staff account: %v", err)
		return c.JSON(500, map[string]interface{}{
			"success": false,
			"message": "Database error",
		})
	}

	if !staff.IsActive {
		return c.JSON(401, map[string]interface{}{
			"success": false,
			"message": "Account is inactive",
		})
	}

	if !utils.CheckPassword(staff.Password, req.Password) {
		return c.JSON(401, map[string]interface{}{
			"success": false,
			"message": "Invalid email or password",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(staff.ID.Hex(), staff.Email, staff.Role)
	if err != nil {
		log.Printf("Error generating tokens: %v", err)
		return c.JSON(500, map[string]interface{}{
			"success": false,
			"message": "Failed to generate tokens",
		})
	}

	// Track activity in the background; login must not wait on it
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := collection.UpdateOne(ctx,
			bson.M{"_id": staff.ID},
			bson.M{"$set": bson.M{"lastActivityAt": time.Now()}},
		)
		if err != nil {
			log.Printf("Error updating last activity: %v", err)
		}
	}()

	return c.JSON(200, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"data": models.LoginResponse{
			Token:        token,
			RefreshToken: refreshToken,
			Staff:        staff,
		},
	})
}

// Logout blacklists the presented token until it would have expired anyway.
func (ac *AuthController) Logout(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == "" || token == auth {
		return c.JSON(400, map[string]interface{}{
			"success": false,
			"message": "No token provided",
		})
	}

	claims := middleware.GetUserFromToken(c)
	expiry := time.Now().Add(24 * time.Hour)
	if claims != nil && claims.ExpiresAt > 0 {
		expiry = time.Unix(claims.ExpiresAt, 0)
	}
	middleware.BlacklistToken(token, expiry)

	return c.JSON(200, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}

// ValidateToken lets the dashboards check session validity on load.
func (ac *AuthController) ValidateToken(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")

	claims, err := middleware.ParseToken(token)
	if err != nil {
		return c.JSON(200, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"valid": false},
		})
	}

	return c.JSON(200, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"valid":  true,
			"userId": claims.UserID,
			"email":  claims.Email,
			"role":   claims.Role,
		},
	})
}
