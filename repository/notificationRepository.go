package repository

import (
	"context"
	"time"

	"github.com/polyhx/event-api/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type NotificationRepository struct {
	mongoClient *mongo.Client
	database    string
}

func NewNotificationRepository(mongoClient *mongo.Client, database string) *NotificationRepository {
	return &NotificationRepository{
		mongoClient: mongoClient,
		database:    database,
	}
}

func (r *NotificationRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.database).Collection("notifications")
}

func (r *NotificationRepository) InsertOne(ctx context.Context, notification entity.Notification) (*entity.Notification, error) {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now().UTC()
	}

	_, err := r.collection().InsertOne(ctx, notification)
	if err != nil {
		return nil, err
	}

	return &notification, nil
}

func (r *NotificationRepository) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Notification, error) {
	result := r.collection().FindOne(ctx, bson.M{"_id": ID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var notification *entity.Notification
	err := result.Decode(&notification)
	if err != nil {
		return nil, err
	}

	return notification, nil
}

func (r *NotificationRepository) FindManyByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*entity.Notification, error) {
	cur, err := r.collection().Find(ctx, bson.M{"event": eventID})
	if err != nil {
		return nil, err
	}

	var notifications []*entity.Notification
	err = cur.All(ctx, &notifications)
	return notifications, err
}
