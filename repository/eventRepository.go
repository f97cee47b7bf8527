package repository

import (
	"context"

	"github.com/polyhx/event-api/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepository struct {
	mongoClient *mongo.Client
	database    string
}

func NewEventRepository(mongoClient *mongo.Client, database string) *EventRepository {
	return &EventRepository{
		mongoClient: mongoClient,
		database:    database,
	}
}

func (r *EventRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.database).Collection("events")
}

// FindAll returns the event list projection used by the landing page: no
// roster, no sponsors.
func (r *EventRepository) FindAll(ctx context.Context) ([]*entity.Event, error) {
	opts := options.Find().
		SetProjection(bson.M{
			"name":      1,
			"imageUrl":  1,
			"beginDate": 1,
			"endDate":   1,
		}).
		SetSort(bson.M{"beginDate": 1})

	cur, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var events []*entity.Event
	err = cur.All(ctx, &events)
	return events, err
}

func (r *EventRepository) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Event, error) {
	result := r.collection().FindOne(ctx, bson.M{"_id": ID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var event *entity.Event
	err := result.Decode(&event)
	if err != nil {
		return nil, err
	}

	return event, nil
}

// UpdateOne writes the event metadata, inserting the document with an empty
// roster when it does not exist yet. The roster, activities and sponsors are
// owned by their own conditional updates and are never written here, so an
// upsert of an existing event cannot clear them.
func (r *EventRepository) UpdateOne(ctx context.Context, event entity.Event) (*entity.Event, error) {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}

	filter := bson.M{"_id": event.ID}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true)

	result := r.collection().FindOneAndUpdate(ctx, filter, eventUpsert(event), opts)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var newEvent *entity.Event
	err := result.Decode(&newEvent)
	if err != nil {
		return nil, err
	}

	return newEvent, nil
}

func eventUpsert(event entity.Event) bson.M {
	return bson.M{
		"$set": bson.M{
			"name":      event.Name,
			"imageUrl":  event.ImageURL,
			"beginDate": event.BeginDate,
			"endDate":   event.EndDate,
		},
		"$setOnInsert": bson.M{
			"attendees": bson.A{},
		},
	}
}

func (r *EventRepository) Exists(ctx context.Context, ID primitive.ObjectID) (bool, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"_id": ID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasRosterEntry reports whether the attendee already has a roster entry in
// the event.
func (r *EventRepository) HasRosterEntry(ctx context.Context, eventID, attendeeID primitive.ObjectID) (bool, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{
		"_id":                eventID,
		"attendees.attendee": attendeeID,
	})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// PushRosterEntry appends a fresh roster entry unless one exists for the
// attendee. The guard in the filter is what keeps concurrent adds from
// producing duplicates.
func (r *EventRepository) PushRosterEntry(ctx context.Context, eventID, attendeeID primitive.ObjectID, role string) (bool, error) {
	filter := bson.M{
		"_id": eventID,
		"attendees.attendee": bson.M{
			"$ne": attendeeID,
		},
	}

	update := bson.M{
		"$push": bson.M{
			"attendees": bson.M{
				"attendee":         attendeeID,
				"role":             role,
				"registered":       false,
				"scannedAttendees": bson.A{},
			},
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount > 0, nil
}

// SetRegistered flips the confirmation flag on the attendee's roster entry.
func (r *EventRepository) SetRegistered(ctx context.Context, eventID, attendeeID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":                eventID,
		"attendees.attendee": attendeeID,
	}

	update := bson.M{
		"$set": bson.M{
			"attendees.$.registered": true,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.MatchedCount > 0, nil
}

// PushScanned records that scannerID has scanned scannedID, unless that edge
// exists already.
func (r *EventRepository) PushScanned(ctx context.Context, eventID, scannerID, scannedID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id": eventID,
		"attendees": bson.M{
			"$elemMatch": bson.M{
				"attendee": scannerID,
				"scannedAttendees": bson.M{
					"$ne": scannedID,
				},
			},
		},
	}

	update := bson.M{
		"$push": bson.M{
			"attendees.$.scannedAttendees": scannedID,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount > 0, nil
}

func (r *EventRepository) PushActivityID(ctx context.Context, eventID, activityID primitive.ObjectID) error {
	filter := bson.M{
		"_id":        eventID,
		"activities": bson.M{"$nin": bson.A{activityID}},
	}

	update := bson.M{
		"$push": bson.M{
			"activities": activityID,
		},
	}

	_, err := r.collection().UpdateOne(ctx, filter, update)
	return err
}

func (r *EventRepository) PushSponsor(ctx context.Context, eventID primitive.ObjectID, sponsor entity.EventSponsor) error {
	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{
		"$push": bson.M{
			"sponsors": sponsor,
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
