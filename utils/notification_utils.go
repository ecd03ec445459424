package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/stayline/stayline_realtime/config"
	"github.com/stayline/stayline_realtime/models"
)

// NotifyOnCallStaff delivers a critical or error notification to every
// on-call staff member over the side channels: email always, FCM when the
// staff member has a registered device token. Best effort; failures are
// logged, never returned to the publisher.
func NotifyOnCallStaff(db *mongo.Client, notification models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	collection := config.GetCollection(db, "staff")
	cursor, err := collection.Find(ctx, bson.M{"onCall": true, "isActive": true})
	if err != nil {
		log.Printf("Error finding on-call staff: %v", err)
		return
	}
	defer cursor.Close(ctx)

	var staff []models.Staff
	if err := cursor.All(ctx, &staff); err != nil {
		log.Printf("Error decoding on-call staff: %v", err)
		return
	}

	subject := fmt.Sprintf("[%s] %s %s", notification.Severity, notification.Type, notification.Action)
	body := buildAlertBody(notification)

	for _, member := range staff {
		if err := sendAlertEmail(member.Email, subject, body); err != nil {
			log.Printf("Failed to send alert email to %s: %v", member.Email, err)
		}
		if member.FCMToken != "" {
			if err := sendFCMAlert(member.FCMToken, notification); err != nil {
				log.Printf("Failed to send FCM alert to %s: %v", member.Email, err)
			}
		}
	}
}

func buildAlertBody(notification models.Notification) string {
	body := fmt.Sprintf("A %s event needs attention.\n\nType: %s\nAction: %s\nChannel: %s\nTime: %s\n",
		notification.Severity, notification.Type, notification.Action,
		notification.Channel, notification.Timestamp.Format(time.RFC3339))
	if room, ok := notification.Details["room_number"].(string); ok && room != "" {
		body += fmt.Sprintf("Room: %s\n", room)
	}
	if desc, ok := notification.Details["description"].(string); ok && desc != "" {
		body += fmt.Sprintf("Description: %s\n", desc)
	}
	return body
}

func sendAlertEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	if smtpHost == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}

func sendFCMAlert(fcmToken string, notification models.Notification) error {
	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	data := map[string]string{
		"type":      notification.Type,
		"action":    notification.Action,
		"channel":   notification.Channel,
		"severity":  notification.Severity,
		"timestamp": notification.Timestamp.Format(time.RFC3339),
	}
	for key, value := range notification.Details {
		if str, ok := value.(string); ok {
			data[key] = str
		}
	}

	fcmMessage := &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("%s %s", notification.Type, notification.Action),
			Body:  fmt.Sprintf("%s event on channel %s", notification.Severity, notification.Channel),
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "stayline_alerts_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: fmt.Sprintf("%s %s", notification.Type, notification.Action),
						Body:  fmt.Sprintf("%s event on channel %s", notification.Severity, notification.Channel),
					},
					Sound:    "default",
					Badge:    func() *int { v := 1; return &v }(),
					Category: "STAFF_ALERT",
				},
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	log.Printf("FCM alert sent: %s", response)
	return nil
}
