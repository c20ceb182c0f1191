package repositories

import (
	"context"
	"time"

	"github.com/platewise/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipient uint, page, limit int64, isRead *bool) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, recipient uint) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, recipient uint) error
	MarkAllRead(ctx context.Context, recipient uint) (int64, error)
	SetEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	DeleteOne(ctx context.Context, id primitive.ObjectID, recipient uint) error
	DeleteAll(ctx context.Context, recipient uint) (int64, error)
	StatsByType(ctx context.Context) ([]models.NotificationTypeStat, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB.
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository.
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// EnsureIndexes creates the recipient listing index and the TTL index that
// removes notifications once expiresAt has passed. The TTL sweep is Mongo's
// background monitor, so removal is best-effort rather than immediate.
func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}

// Create inserts a new notification.
func (r *MongoNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// ListByRecipient returns a page of the recipient's notifications, newest
// first, optionally filtered by read state, together with the total count.
func (r *MongoNotificationRepository) ListByRecipient(ctx context.Context, recipient uint, page, limit int64, isRead *bool) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient": recipient}
	if isRead != nil {
		filter["isRead"] = *isRead
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// UnreadCount counts the recipient's unread notifications.
func (r *MongoNotificationRepository) UnreadCount(ctx context.Context, recipient uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient": recipient, "isRead": false})
}

// MarkRead flips isRead and stamps readAt on first read. Marking an
// already-read notification succeeds without touching readAt.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID, recipient uint) error {
	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "recipient": recipient, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Already read, or not owned: distinguish the two.
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id, "recipient": recipient})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient and returns
// the number modified.
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipient uint) (int64, error) {
	now := time.Now()
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient": recipient, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SetEmailSent records a successful email delivery for the notification.
func (r *MongoNotificationRepository) SetEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"delivery.email.sent": true, "delivery.email.sentAt": at}},
	)
	return err
}

// DeleteOne permanently removes a notification owned by the recipient.
func (r *MongoNotificationRepository) DeleteOne(ctx context.Context, id primitive.ObjectID, recipient uint) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "recipient": recipient})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every notification owned by the recipient.
func (r *MongoNotificationRepository) DeleteAll(ctx context.Context, recipient uint) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"recipient": recipient})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// StatsByType aggregates totals and unread sub-counts grouped by type.
func (r *MongoNotificationRepository) StatsByType(ctx context.Context) ([]models.NotificationTypeStat, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$type"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "unread", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{bson.D{{Key: "$eq", Value: bson.A{"$isRead", false}}}, 1, 0}},
			}}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := []models.NotificationTypeStat{}
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
