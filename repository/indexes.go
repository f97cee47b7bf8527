package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes the conditional writes rely on.
// The insert-if-absent upserts on attendees and teams are only race-safe
// when the database rejects a second document with the same key, so this
// runs at startup before the server accepts requests.
func EnsureIndexes(ctx context.Context, mongoClient *mongo.Client, database string) error {
	db := mongoClient.Database(database)
	for collection, models := range indexModels() {
		_, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return err
		}
	}
	return nil
}

func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"attendees": {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "publicId", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
		},
		"teams": {
			{
				Keys:    bson.D{{Key: "event", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}
}
