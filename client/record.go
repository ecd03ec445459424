package client

import (
	"time"

	"github.com/stayline/stayline_realtime/models"
)

// Record is the client-side representation of a notification. Details is a
// tagged union keyed by Type; payloads the client does not recognize land in
// UnknownDetails with the raw map preserved.
type Record struct {
	ID        string
	Type      string
	Action    string
	Severity  string
	Channel   string
	Timestamp time.Time
	Read      bool
	Details   Details
}

// Details is implemented by every per-type payload variant.
type Details interface {
	detailsType() string
}

// MaintenanceDetails carries maintenance_update payloads.
type MaintenanceDetails struct {
	RoomNumber  string
	Description string
	OldStatus   string
	NewStatus   string
}

// HousekeepingDetails carries housekeeping_update payloads.
type HousekeepingDetails struct {
	RoomNumber string
	Status     string
	Notes      string
}

// RoomStatusDetails carries room_status_update payloads.
type RoomStatusDetails struct {
	RoomNumber string
	OldStatus  string
	NewStatus  string
}

// BookingDetails carries booking_update payloads.
type BookingDetails struct {
	BookingID  string
	GuestName  string
	RoomNumber string
}

// BillingDetails carries billing_update payloads.
type BillingDetails struct {
	InvoiceID string
	GuestName string
	Amount    string
}

// SystemAlertDetails carries system_alert payloads.
type SystemAlertDetails struct {
	Message string
}

// UnknownDetails preserves the payload of an unrecognized notification type.
type UnknownDetails struct {
	Raw map[string]interface{}
}

func (MaintenanceDetails) detailsType() string  { return models.NotificationTypeMaintenance }
func (HousekeepingDetails) detailsType() string { return models.NotificationTypeHousekeeping }
func (RoomStatusDetails) detailsType() string   { return models.NotificationTypeRoomStatus }
func (BookingDetails) detailsType() string      { return models.NotificationTypeBooking }
func (BillingDetails) detailsType() string      { return models.NotificationTypeBilling }
func (SystemAlertDetails) detailsType() string  { return models.NotificationTypeSystemAlert }
func (UnknownDetails) detailsType() string      { return "unknown" }

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// decodeDetails classifies a raw details map into the variant for typ.
func decodeDetails(typ string, raw map[string]interface{}) Details {
	switch typ {
	case models.NotificationTypeMaintenance:
		return MaintenanceDetails{
			RoomNumber:  stringField(raw, "room_number"),
			Description: stringField(raw, "description"),
			OldStatus:   stringField(raw, "old_status"),
			NewStatus:   stringField(raw, "new_status"),
		}
	case models.NotificationTypeHousekeeping:
		return HousekeepingDetails{
			RoomNumber: stringField(raw, "room_number"),
			Status:     stringField(raw, "status"),
			Notes:      stringField(raw, "notes"),
		}
	case models.NotificationTypeRoomStatus:
		return RoomStatusDetails{
			RoomNumber: stringField(raw, "room_number"),
			OldStatus:  stringField(raw, "old_status"),
			NewStatus:  stringField(raw, "new_status"),
		}
	case models.NotificationTypeBooking:
		return BookingDetails{
			BookingID:  stringField(raw, "booking_id"),
			GuestName:  stringField(raw, "guest_name"),
			RoomNumber: stringField(raw, "room_number"),
		}
	case models.NotificationTypeBilling:
		return BillingDetails{
			InvoiceID: stringField(raw, "invoice_id"),
			GuestName: stringField(raw, "guest_name"),
			Amount:    stringField(raw, "amount"),
		}
	case models.NotificationTypeSystemAlert:
		return SystemAlertDetails{
			Message: stringField(raw, "message"),
		}
	default:
		return UnknownDetails{Raw: raw}
	}
}
