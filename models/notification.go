package models

import (
	"time"
)

// Notification types pushed over the realtime channel
const (
	NotificationTypeMaintenance  = "maintenance_update"
	NotificationTypeHousekeeping = "housekeeping_update"
	NotificationTypeRoomStatus   = "room_status_update"
	NotificationTypeBooking      = "booking_update"
	NotificationTypeBilling      = "billing_update"
	NotificationTypeSystemAlert  = "system_alert"
)

// Notification severities
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Well-known channels. Clients may subscribe to any channel name; these are
// the ones the hotel dashboards use.
const (
	ChannelAdmin        = "admin"
	ChannelReception    = "reception"
	ChannelMaintenance  = "maintenance"
	ChannelHousekeeping = "housekeeping"
)

// Notification model
type Notification struct {
	ID        string                 `json:"id" bson:"_id"`
	Type      string                 `json:"type" bson:"type"`                 // e.g. "room_status_update"
	Action    string                 `json:"action" bson:"action"`             // e.g. "created", "updated"
	Details   map[string]interface{} `json:"details,omitempty" bson:"details"` // type-specific payload
	Severity  string                 `json:"severity" bson:"severity"`
	Channel   string                 `json:"channel" bson:"channel"`
	Timestamp time.Time              `json:"timestamp" bson:"timestamp"`
	IsRead    bool                   `json:"read" bson:"isRead"` // whether the notification has been read
}

// PublishRequest is the body accepted by the publish endpoint. Hotel services
// (maintenance, housekeeping, billing, booking) post here to fan events out.
type PublishRequest struct {
	Type     string                 `json:"type" validate:"required"`
	Action   string                 `json:"action" validate:"required"`
	Channel  string                 `json:"channel" validate:"required"`
	Severity string                 `json:"severity"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// ValidSeverity reports whether s is one of the known severity levels.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityCritical, SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}
