package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Staff roles
const (
	RoleAdmin        = "admin"
	RoleReception    = "reception"
	RoleMaintenance  = "maintenance"
	RoleHousekeeping = "housekeeping"
)

// Staff represents a hotel staff account that can authenticate against the
// gateway and open a realtime connection.
type Staff struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	FullName     string             `json:"fullName" bson:"fullName"`
	Password     string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	Role         string             `json:"role" bson:"role"`
	FCMToken     string             `json:"-" bson:"fcmToken,omitempty"`
	OnCall       bool               `json:"onCall" bson:"onCall"` // receives push/email for critical events
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	LastActivity time.Time          `json:"lastActivityAt,omitempty" bson:"lastActivityAt,omitempty"`
}

// LoginRequest is the body for staff login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued tokens
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Staff        Staff  `json:"staff"`
}
