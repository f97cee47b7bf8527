package repository

import (
	"context"

	"github.com/polyhx/event-api/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttendeeRepository struct {
	mongoClient *mongo.Client
	database    string
}

func NewAttendeeRepository(mongoClient *mongo.Client, database string) *AttendeeRepository {
	return &AttendeeRepository{
		mongoClient: mongoClient,
		database:    database,
	}
}

func (r *AttendeeRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.database).Collection("attendees")
}

func (r *AttendeeRepository) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Attendee, error) {
	return r.findOne(ctx, bson.M{"_id": ID})
}

func (r *AttendeeRepository) FindOneByUserID(ctx context.Context, userID string) (*entity.Attendee, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *AttendeeRepository) FindOneByEmail(ctx context.Context, email string) (*entity.Attendee, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AttendeeRepository) FindOneByPublicID(ctx context.Context, publicID string) (*entity.Attendee, error) {
	return r.findOne(ctx, bson.M{"publicId": publicID})
}

func (r *AttendeeRepository) findOne(ctx context.Context, m bson.M) (*entity.Attendee, error) {
	result := r.collection().FindOne(ctx, m)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var attendee *entity.Attendee
	err := result.Decode(&attendee)
	if err != nil {
		return nil, err
	}

	return attendee, nil
}

func (r *AttendeeRepository) FindManyByIDs(ctx context.Context, IDs []primitive.ObjectID) ([]*entity.Attendee, error) {
	cur, err := r.collection().Find(ctx, bson.M{
		"_id": bson.M{
			"$in": IDs,
		},
	})
	if err != nil {
		return nil, err
	}

	var attendees []*entity.Attendee
	err = cur.All(ctx, &attendees)
	return attendees, err
}

// FindManyByIDsPaged returns one page of attendees out of the given id set,
// optionally narrowed to a list of schools, plus the total count before
// paging.
func (r *AttendeeRepository) FindManyByIDsPaged(ctx context.Context, IDs []primitive.ObjectID, schools []string, skip, limit int64) ([]*entity.Attendee, int64, error) {
	m := bson.M{
		"_id": bson.M{
			"$in": IDs,
		},
	}
	if len(schools) > 0 {
		m["school"] = bson.M{
			"$in": schools,
		}
	}

	total, err := r.collection().CountDocuments(ctx, m)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSkip(skip).SetLimit(limit)
	cur, err := r.collection().Find(ctx, m, opts)
	if err != nil {
		return nil, 0, err
	}

	var attendees []*entity.Attendee
	err = cur.All(ctx, &attendees)
	if err != nil {
		return nil, 0, err
	}

	return attendees, total, nil
}

// InsertOne creates the attendee unless one with the same userId exists
// already. The $setOnInsert upsert makes concurrent creates race-safe.
func (r *AttendeeRepository) InsertOne(ctx context.Context, attendee entity.Attendee) (*entity.Attendee, bool, error) {
	if attendee.ID.IsZero() {
		attendee.ID = primitive.NewObjectID()
	}
	if attendee.MessagingTokens == nil {
		attendee.MessagingTokens = []string{}
	}
	if attendee.Notifications == nil {
		attendee.Notifications = []entity.AttendeeNotification{}
	}

	filter := bson.M{"userId": attendee.UserID}
	update := bson.M{
		"$setOnInsert": attendee,
	}

	result, err := r.collection().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, err
	}
	if result.UpsertedCount == 0 {
		return nil, false, nil
	}

	return &attendee, true, nil
}

func (r *AttendeeRepository) UpdateProfileByUserID(ctx context.Context, userID string, fields bson.M) error {
	_, err := r.collection().UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": fields})
	return err
}

func (r *AttendeeRepository) SetPublicID(ctx context.Context, attendeeID primitive.ObjectID, publicID string) error {
	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": attendeeID}, bson.M{
		"$set": bson.M{
			"publicId": publicID,
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PushToken appends the messaging token unless it is present already.
func (r *AttendeeRepository) PushToken(ctx context.Context, userID, token string) (bool, error) {
	filter := bson.M{
		"userId":          userID,
		"messagingTokens": bson.M{"$nin": bson.A{token}},
	}

	update := bson.M{
		"$push": bson.M{
			"messagingTokens": token,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount > 0, nil
}

func (r *AttendeeRepository) PullToken(ctx context.Context, userID, token string) (bool, error) {
	filter := bson.M{
		"userId":          userID,
		"messagingTokens": token,
	}

	update := bson.M{
		"$pull": bson.M{
			"messagingTokens": token,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount > 0, nil
}

// PushNotification adds an unseen inbox entry for the notification unless the
// attendee already has one. Safe to retry after a partial fan-out.
func (r *AttendeeRepository) PushNotification(ctx context.Context, attendeeID, notificationID primitive.ObjectID) error {
	filter := bson.M{
		"_id": attendeeID,
		"notifications.notification": bson.M{
			"$ne": notificationID,
		},
	}

	update := bson.M{
		"$push": bson.M{
			"notifications": bson.M{
				"notification": notificationID,
				"seen":         false,
			},
		},
	}

	_, err := r.collection().UpdateOne(ctx, filter, update)
	return err
}

// SetNotificationSeen flips the seen flag on the single matching inbox entry.
func (r *AttendeeRepository) SetNotificationSeen(ctx context.Context, userID string, notificationID primitive.ObjectID, seen bool) (bool, error) {
	filter := bson.M{
		"userId":                     userID,
		"notifications.notification": notificationID,
	}

	update := bson.M{
		"$set": bson.M{
			"notifications.$.seen": seen,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.MatchedCount > 0, nil
}

// FindOneByUserIDWithInbox loads the attendee with every inbox entry joined
// to its notification document.
func (r *AttendeeRepository) FindOneByUserIDWithInbox(ctx context.Context, userID string) (*entity.Attendee, error) {
	pipeline := bson.A{
		bson.M{
			"$match": bson.M{"userId": userID},
		},
		bson.M{
			"$unwind": bson.M{
				"path":                       "$notifications",
				"preserveNullAndEmptyArrays": true,
			},
		},
		bson.M{
			"$lookup": bson.M{
				"from":         "notifications",
				"localField":   "notifications.notification",
				"foreignField": "_id",
				"as":           "notifications.notificationDoc",
			},
		},
		bson.M{
			"$unwind": bson.M{
				"path":                       "$notifications.notificationDoc",
				"preserveNullAndEmptyArrays": true,
			},
		},
		bson.M{
			"$group": bson.M{
				"_id":           "$_id",
				"doc":           bson.M{"$first": "$$ROOT"},
				"notifications": bson.M{"$push": "$notifications"},
			},
		},
		bson.M{
			"$addFields": bson.M{
				"doc.notifications": bson.M{
					"$filter": bson.M{
						"input": "$notifications",
						"as":    "n",
						"cond":  bson.M{"$ifNull": bson.A{"$$n.notification", false}},
					},
				},
			},
		},
		bson.M{
			"$replaceRoot": bson.M{"newRoot": "$doc"},
		},
	}

	cur, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var attendees []*entity.Attendee
	err = cur.All(ctx, &attendees)
	if err != nil {
		return nil, err
	}

	if len(attendees) == 0 {
		return nil, mongo.ErrNoDocuments
	}

	return attendees[0], nil
}
