package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/hexsmith/hexsmith/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotificationNotFound is returned when the referenced notification does
// not exist. A malformed notification id is treated the same way.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotificationByID(ctx context.Context, id string) (*models.Notification, error)
	HasPendingRequest(ctx context.Context, sender, recipient uint, course primitive.ObjectID) (bool, error)
	GetRequestedCourseIDs(ctx context.Context, sender uint) ([]primitive.ObjectID, error)
	GetInbox(ctx context.Context, recipient uint) ([]models.Notification, error)
	UpdateStatusIfPending(ctx context.Context, id primitive.ObjectID, status string) (bool, error)
	DeleteNotification(ctx context.Context, id string) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// CreateNotification creates a new notification in MongoDB
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// GetNotificationByID retrieves a notification by ID from MongoDB
func (r *MongoNotificationRepository) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotificationNotFound
	}

	var notification models.Notification
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// HasPendingRequest reports whether a pending request already exists for the
// (sender, recipient, course) triple
func (r *MongoNotificationRepository) HasPendingRequest(ctx context.Context, sender, recipient uint, course primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"sender":    sender,
		"recipient": recipient,
		"course":    course,
		"type":      models.NotificationTypeRequest,
		"status":    models.StatusPending,
	}
	err := r.collection.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetRequestedCourseIDs returns the course ids the sender has a pending or
// accepted request for. These suppress re-requesting and community listing.
func (r *MongoNotificationRepository) GetRequestedCourseIDs(ctx context.Context, sender uint) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"sender": sender,
		"type":   models.NotificationTypeRequest,
		"status": bson.M{"$in": []string{models.StatusPending, models.StatusAccepted}},
	}
	findOptions := options.Find().SetProjection(bson.M{"course": 1})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Course primitive.ObjectID `bson:"course"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.Course
	}
	return ids, nil
}

// GetInbox returns the actionable notifications for a recipient: pending
// course requests plus unread info messages, newest first. Resolved requests
// and read infos stay in storage as history but are not surfaced.
func (r *MongoNotificationRepository) GetInbox(ctx context.Context, recipient uint) ([]models.Notification, error) {
	filter := bson.M{
		"recipient": recipient,
		"$or": []bson.M{
			{"type": models.NotificationTypeRequest, "status": models.StatusPending},
			{"type": models.NotificationTypeInfo, "status": models.StatusUnread},
		},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
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

// UpdateStatusIfPending flips a pending request to the given status. The
// filter doubles as a compare-and-swap: when two actors race on the same
// request only one update matches, the other sees false.
func (r *MongoNotificationRepository) UpdateStatusIfPending(ctx context.Context, id primitive.ObjectID, status string) (bool, error) {
	filter := bson.M{
		"_id":    id,
		"type":   models.NotificationTypeRequest,
		"status": models.StatusPending,
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// DeleteNotification deletes a notification by ID from MongoDB
func (r *MongoNotificationRepository) DeleteNotification(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotificationNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
