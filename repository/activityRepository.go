package repository

import (
	"context"

	"github.com/polyhx/event-api/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ActivityRepository struct {
	mongoClient *mongo.Client
	database    string
}

func NewActivityRepository(mongoClient *mongo.Client, database string) *ActivityRepository {
	return &ActivityRepository{
		mongoClient: mongoClient,
		database:    database,
	}
}

func (r *ActivityRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.database).Collection("activities")
}

func (r *ActivityRepository) InsertOne(ctx context.Context, activity entity.Activity) (*entity.Activity, error) {
	if activity.ID.IsZero() {
		activity.ID = primitive.NewObjectID()
	}
	if activity.AttendeeIDs == nil {
		activity.AttendeeIDs = []primitive.ObjectID{}
	}

	_, err := r.collection().InsertOne(ctx, activity)
	if err != nil {
		return nil, err
	}

	return &activity, nil
}

func (r *ActivityRepository) FindAll(ctx context.Context) ([]*entity.Activity, error) {
	cur, err := r.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	var activities []*entity.Activity
	err = cur.All(ctx, &activities)
	return activities, err
}

func (r *ActivityRepository) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Activity, error) {
	result := r.collection().FindOne(ctx, bson.M{"_id": ID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var activity *entity.Activity
	err := result.Decode(&activity)
	if err != nil {
		return nil, err
	}

	return activity, nil
}

func (r *ActivityRepository) FindManyByIDs(ctx context.Context, IDs []primitive.ObjectID) ([]*entity.Activity, error) {
	cur, err := r.collection().Find(ctx, bson.M{
		"_id": bson.M{
			"$in": IDs,
		},
	})
	if err != nil {
		return nil, err
	}

	var activities []*entity.Activity
	err = cur.All(ctx, &activities)
	return activities, err
}

// PushAttendee appends the attendee unless they already participate.
func (r *ActivityRepository) PushAttendee(ctx context.Context, activityID, attendeeID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":       activityID,
		"attendees": bson.M{"$nin": bson.A{attendeeID}},
	}

	update := bson.M{
		"$push": bson.M{
			"attendees": attendeeID,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount > 0, nil
}
