package repository

import (
	"context"

	"github.com/polyhx/event-api/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TeamRepository struct {
	mongoClient *mongo.Client
	database    string
}

func NewTeamRepository(mongoClient *mongo.Client, database string) *TeamRepository {
	return &TeamRepository{
		mongoClient: mongoClient,
		database:    database,
	}
}

func (r *TeamRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.database).Collection("teams")
}

func (r *TeamRepository) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Team, error) {
	return r.findOne(ctx, bson.M{"_id": ID})
}

func (r *TeamRepository) FindOneByEventAndName(ctx context.Context, eventID primitive.ObjectID, name string) (*entity.Team, error) {
	return r.findOne(ctx, bson.M{
		"event": eventID,
		"name":  name,
	})
}

// FindOneByEventAndAttendee returns the team the attendee belongs to in the
// event, if any.
func (r *TeamRepository) FindOneByEventAndAttendee(ctx context.Context, eventID, attendeeID primitive.ObjectID) (*entity.Team, error) {
	return r.findOne(ctx, bson.M{
		"event":     eventID,
		"attendees": attendeeID,
	})
}

func (r *TeamRepository) findOne(ctx context.Context, m bson.M) (*entity.Team, error) {
	result := r.collection().FindOne(ctx, m)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var team *entity.Team
	err := result.Decode(&team)
	if err != nil {
		return nil, err
	}

	return team, nil
}

func (r *TeamRepository) FindAll(ctx context.Context) ([]*entity.Team, error) {
	return r.findWithMembers(ctx, bson.M{})
}

func (r *TeamRepository) FindOneByIDWithMembers(ctx context.Context, ID primitive.ObjectID) (*entity.Team, error) {
	teams, err := r.findWithMembers(ctx, bson.M{"_id": ID})
	if err != nil {
		return nil, err
	}

	return teams[0], nil
}

func (r *TeamRepository) FindOneByEventAndAttendeeWithMembers(ctx context.Context, eventID, attendeeID primitive.ObjectID) (*entity.Team, error) {
	teams, err := r.findWithMembers(ctx, bson.M{
		"event":     eventID,
		"attendees": attendeeID,
	})
	if err != nil {
		return nil, err
	}

	return teams[0], nil
}

func (r *TeamRepository) findWithMembers(ctx context.Context, m bson.M) ([]*entity.Team, error) {
	pipeline := bson.A{
		bson.M{
			"$match": m,
		},
		bson.M{
			"$lookup": bson.M{
				"from": "attendees",
				"let":  bson.M{"attendeeIds": "$attendees"},
				"pipeline": bson.A{
					bson.M{
						"$match": bson.M{"$expr": bson.M{"$in": bson.A{"$_id", "$$attendeeIds"}}},
					},
					bson.M{
						"$addFields": bson.M{
							"sort": bson.M{
								"$indexOfArray": bson.A{"$$attendeeIds", "$_id"},
							},
						},
					},
					bson.M{
						"$sort": bson.M{"sort": 1},
					},
					bson.M{
						"$addFields": bson.M{
							"sort": "$$REMOVE",
						},
					},
					bson.M{
						"$project": bson.M{
							"messagingTokens": 0,
							"notifications":   0,
						},
					},
				},
				"as": "members",
			},
		},
	}

	cur, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var teams []*entity.Team
	err = cur.All(ctx, &teams)
	if err != nil {
		return nil, err
	}

	if len(teams) == 0 {
		return nil, mongo.ErrNoDocuments
	}

	return teams, nil
}

// CreateOne inserts the team with its first member unless a team with that
// name already exists for the event. Returns false when the team existed;
// the caller then takes the join path.
func (r *TeamRepository) CreateOne(ctx context.Context, eventID primitive.ObjectID, name string, attendeeID primitive.ObjectID) (*entity.Team, bool, error) {
	team := entity.Team{
		ID:          primitive.NewObjectID(),
		Name:        name,
		EventID:     eventID,
		AttendeeIDs: []primitive.ObjectID{attendeeID},
	}

	filter := bson.M{
		"event": eventID,
		"name":  name,
	}

	update := bson.M{
		"$setOnInsert": team,
	}

	result, err := r.collection().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, err
	}
	if result.UpsertedCount == 0 {
		return nil, false, nil
	}

	return &team, true, nil
}

// PushMember appends the attendee to the team unless the attendee is already
// a member or the team holds maxSize members. The whole condition is
// evaluated inside the single update, so concurrent joins cannot push
// membership past maxSize.
func (r *TeamRepository) PushMember(ctx context.Context, teamID, attendeeID primitive.ObjectID, maxSize int) (bool, error) {
	filter := bson.M{
		"_id": teamID,
		"attendees": bson.M{
			"$ne": attendeeID,
		},
		"$expr": bson.M{
			"$lt": bson.A{bson.M{"$size": "$attendees"}, maxSize},
		},
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

// PullMember removes the attendee and returns the team as it looks after the
// removal.
func (r *TeamRepository) PullMember(ctx context.Context, teamID, attendeeID primitive.ObjectID) (*entity.Team, bool, error) {
	filter := bson.M{
		"_id":       teamID,
		"attendees": attendeeID,
	}

	update := bson.M{
		"$pull": bson.M{
			"attendees": attendeeID,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	result := r.collection().FindOneAndUpdate(ctx, filter, update, opts)
	if result.Err() != nil {
		if result.Err() == mongo.ErrNoDocuments {
			return nil, false, nil
		}
		return nil, false, result.Err()
	}

	var team *entity.Team
	err := result.Decode(&team)
	if err != nil {
		return nil, false, err
	}

	return team, true, nil
}

// DeleteIfEmpty removes the team only while its member set is still empty.
func (r *TeamRepository) DeleteIfEmpty(ctx context.Context, teamID primitive.ObjectID) (bool, error) {
	result, err := r.collection().DeleteOne(ctx, bson.M{
		"_id":       teamID,
		"attendees": bson.M{"$size": 0},
	})
	if err != nil {
		return false, err
	}

	return result.DeletedCount > 0, nil
}
