package repositories

import (
	"context"
	"time"

	"github.com/magwach/twitter/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	UpsertFollowNotification(ctx context.Context, from, to primitive.ObjectID) error
	DeleteFollowNotification(ctx context.Context, from, to primitive.ObjectID) error
	GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	GetByRecipient(ctx context.Context, to primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, to primitive.ObjectID) error
	DeleteAllForRecipient(ctx context.Context, to primitive.ObjectID) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// CreateNotification appends a notification to the ledger.
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// UpsertFollowNotification creates the follow notification for the ordered
// pair (from, to) unless an unread one already exists. The upsert lets the
// store adjudicate racing follow toggles, keeping at most one outstanding
// unread follow notification per pair.
func (r *MongoNotificationRepository) UpsertFollowNotification(ctx context.Context, from, to primitive.ObjectID) error {
	filter := bson.M{"from": from, "to": to, "type": models.NotificationFollow, "read": false}
	update := bson.M{"$setOnInsert": bson.M{
		"from":       from,
		"to":         to,
		"type":       models.NotificationFollow,
		"read":       false,
		"created_at": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// DeleteFollowNotification removes any follow notification for the ordered
// pair (from, to). Removing an absent notification is a no-op.
func (r *MongoNotificationRepository) DeleteFollowNotification(ctx context.Context, from, to primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"from": from, "to": to, "type": models.NotificationFollow})
	return err
}

// GetNotificationByID retrieves a single notification.
func (r *MongoNotificationRepository) GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notification models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// GetByRecipient retrieves every notification addressed to the user, newest
// first.
func (r *MongoNotificationRepository) GetByRecipient(ctx context.Context, to primitive.ObjectID) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"to": to}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAsRead marks a single notification read. Marking an already-read
// notification succeeds silently.
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllAsRead marks every notification addressed to the user read.
func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, to primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"to": to, "read": false}, bson.M{"$set": bson.M{"read": true}})
	return err
}

// DeleteAllForRecipient removes every notification addressed to the user and
// reports how many were deleted.
func (r *MongoNotificationRepository) DeleteAllForRecipient(ctx context.Context, to primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"to": to})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
