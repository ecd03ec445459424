package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stayline/stayline_realtime/config"
	"github.com/stayline/stayline_realtime/models"
)

// NotificationRepository persists the notification history so dashboards can
// load past events after a reload. The live path goes through the hub; this
// is the durable side.
type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Client) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Database(config.DatabaseName()).Collection("notifications"),
	}
}

// Insert stores a notification.
func (r *NotificationRepository) Insert(notification models.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// ListFilter narrows history queries.
type ListFilter struct {
	Read    *bool  // nil means both
	Type    string // empty means any
	Channel string // empty means any
	Page    int64
	Limit   int64
}

// List returns one page of history, newest first, plus the total match count.
func (r *NotificationRepository) List(filter ListFilter) ([]models.Notification, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Read != nil {
		query["isRead"] = *filter.Read
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Channel != "" {
		query["channel"] = filter.Channel
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead flips one notification to read. Already-read records stay read.
func (r *NotificationRepository) MarkRead(id string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// MarkAllRead flips every unread notification to read in one update.
func (r *NotificationRepository) MarkAllRead() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.collection.UpdateMany(ctx,
		bson.M{"isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// Clear deletes the entire history.
func (r *NotificationRepository) Clear() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// UnreadCount counts unread notifications.
func (r *NotificationRepository) UnreadCount() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"isRead": false})
}
