package controllers

import (
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stayline/stayline_realtime/models"
	"github.com/stayline/stayline_realtime/repositories"
	"github.com/stayline/stayline_realtime/utils"
	"github.com/stayline/stayline_realtime/websocket"
)

type NotificationController struct {
	db   *mongo.Client
	repo *repositories.NotificationRepository
	hub  *websocket.Hub
}

func NewNotificationController(db *mongo.Client, repo *repositories.NotificationRepository, hub *websocket.Hub) *NotificationController {
	return &NotificationController{db: db, repo: repo, hub: hub}
}

// Publish accepts an event from a hotel service (maintenance, housekeeping,
// billing, booking), persists it and fans it out over the realtime channel.
// Critical and error events additionally go to on-call staff by email/push.
func (nc *NotificationController) Publish(c echo.Context) error {
	var req models.PublishRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(400, map[string]interface{}{
			"success": false,
			"message": "Missing required fields: type, action and channel",
		})
	}

	severity := req.Severity
	if !models.ValidSeverity(severity) {
		severity = models.SeverityInfo
	}

	notification := models.Notification{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Action:    req.Action,
		Details:   req.Details,
		Severity:  severity,
		Channel:   req.Channel,
		Timestamp: time.Now().UTC(),
		IsRead:    false,
	}

	if err := nc.repo.Insert(notification); err != nil {
		log.Printf("Error saving notification: %v", err)
		return c.JSON(500, map[string]interface{}{
			"success": false,
			"message": "Failed to save notification",
		})
	}

	nc.hub.Publish(notification)

	if severity == models.SeverityCritical || severity == models.SeverityError {
		go utils.NotifyOnCallStaff(nc.db, notification)
	}

	return c.JSON(201, map[string]interface{}{
		"success": true,
		"message": "Notification published",
		"data":    notification,
	})
}

// List returns a page of notification history. Query params: filter
// (all|unread|read), type, channel, page, limit.
func (nc *NotificationController) List(c echo.Context) error {
	filter := repositories.ListFilter{
		Type:    c.QueryParam("type"),
		Channel: c.QueryParam("channel"),
		Page:    parseInt64(c.QueryParam("page"), 1),
		Limit:   parseInt64(c.QueryParam("limit"), 20),
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	switch c.QueryParam("filter") {
	case "unread":
		read := false
		filter.Read = &read
	case "read":
		read := true
		filter.Read = &read
	case "", "all":
	default:
		return c.JSON(400, map[string]interface{}{
			"success": false,
			"message": "filter must be one of all, unread, read",
		})
	}

	notifications, total, err := nc.repo.List(filter)
	if err != nil {
		log.Printf("Error listing notifications: %v", err)
		return c.JSON(500, map[string]interface{}{
			"success": false,
			"message": "Failed to load notifications",
		})
	}

	unread, err := nc.repo.UnreadCount()
	if err != nil {
		log.Printf("Error counting unread notifications: %v", err)
		return c.JSON(500, map[string]interface{}{
			"success": false,
			"message": "Failed to load notifications",
		})
	}

	return c.JSON(200, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"notifications": notifications,
			"total":         total,
			"unreadCount":   unread,
			"page":          filter.Page,
			"limit":         filter.Limit,
		},
	})
}

// MarkRead marks one notification read. Idempotent: repeating the call on an
// already-read or unknown id succeeds with modified = 0.
func (nc *NotificationController) MarkRead(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(400, map[string]interface{}{
			"success": false,
			"message": "Notification id is required",
		})
	}

	modified, err := nc.repo.MarkRead(id)
	if err != nil {
		log.Printf("Error marking notification %s read: %v", id, err)
		return c.JSON(500, map[string]interface{}{
			"success": false,
			"message": "Failed to mark notification read",
		})
	}

	return c.JSON(200, map[string]interface{}{
		"success": true,
		"message": "Notification marked read",
		"data":    map[string]interface{}{"modified": modified},
	})
}

// MarkAllRead marks every unread notification read in one update.
func (nc *NotificationController) MarkAllRead(c echo.Context) error {
	modified, err := nc.repo.MarkAllRead()
	if err != nil {
		log.Printf("Error marking all notifications read: %v", err)
		return c.JSON(500, map[string]interface{}{
			"success": false,
			"message": "Failed to mark notifications read",
		})
	}

	return c.JSON(200, map[string]interface{}{
		"success": true,
		"message": "All notifications marked read",
		"data":    map[string]interface{}{"modified": modified},
	})
}

// Clear deletes the entire notification history.
func (nc *NotificationController) Clear(c echo.Context) error {
	deleted, err := nc.repo.Clear()
	if err != nil {
		log.Printf("Error clearing notifications: %v", err)
		return c.JSON(500, map[string]interface{}{
			"success": false,
			"message": "Failed to clear notifications",
		})
	}

	return c.JSON(200, map[string]interface{}{
		"success": true,
		"message": "Notifications cleared",
		"data":    map[string]interface{}{"deleted": deleted},
	})
}

// UnreadCount returns the unread badge count.
func (nc *NotificationController) UnreadCount(c echo.Context) error {
	unread, err := nc.repo.UnreadCount()
	if err != nil {
		log.Printf("Error counting unread notifications: %v", err)
		return c.JSON(500, map[string]interface{}{
			"success": false,
			"message": "Failed to count notifications",
		})
	}

	return c.JSON(200, map[string]interface{}{
		"success": true,
		"data":    map[string]interface{}{"unreadCount": unread},
	})
}

func parseInt64(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
