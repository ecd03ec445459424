package client

import (
	"fmt"

	"github.com/stayline/stayline_realtime/models"
)

// Title maps a record to its display title, e.g. "Maintenance created".
// Unknown types get the generic "Notification" title; this never fails.
func Title(rec Record) string {
	prefix := ""
	switch rec.Type {
	case models.NotificationTypeMaintenance:
		prefix = "Maintenance"
	case models.NotificationTypeHousekeeping:
		prefix = "Housekeeping"
	case models.NotificationTypeRoomStatus:
		prefix = "Room Status"
	case models.NotificationTypeBooking:
		prefix = "Booking"
	case models.NotificationTypeBilling:
		prefix = "Billing"
	case models.NotificationTypeSystemAlert:
		return "System Alert"
	default:
		return "Notification"
	}
	if rec.Action == "" {
		return prefix
	}
	return prefix + " " + rec.Action
}

// Message maps a record to its display message using the per-type template.
func Message(rec Record) string {
	switch d := rec.Details.(type) {
	case MaintenanceDetails:
		if d.RoomNumber != "" {
			return fmt.Sprintf("Room %s: %s", d.RoomNumber, rec.Action)
		}
		if d.Description != "" {
			return d.Description
		}
	case HousekeepingDetails:
		if d.RoomNumber != "" {
			return fmt.Sprintf("Room %s: %s", d.RoomNumber, rec.Action)
		}
	case RoomStatusDetails:
		if d.RoomNumber != "" && d.NewStatus != "" {
			return fmt.Sprintf("Room %s is now %s", d.RoomNumber, d.NewStatus)
		}
	case BookingDetails:
		if d.GuestName != "" {
			return fmt.Sprintf("Booking for %s: %s", d.GuestName, rec.Action)
		}
		if d.BookingID != "" {
			return fmt.Sprintf("Booking %s: %s", d.BookingID, rec.Action)
		}
	case BillingDetails:
		if d.InvoiceID != "" {
			return fmt.Sprintf("Invoice %s: %s", d.InvoiceID, rec.Action)
		}
	case SystemAlertDetails:
		if d.Message != "" {
			return d.Message
		}
	}
	return "You have a new notification"
}

// SeverityColor returns the display color for a severity level.
func SeverityColor(severity string) string {
	switch severity {
	case models.SeverityCritical:
		return "#dc2626"
	case models.SeverityError:
		return "#ea580c"
	case models.SeverityWarning:
		return "#d97706"
	default:
		return "#2563eb"
	}
}
