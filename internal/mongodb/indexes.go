package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateAllIndexes creates the indexes every collection needs for the
// ownership queries, the ranking job, and the purge fan-out.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	if err := createReviewIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	if err := createIdentityIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to create identity indexes: %w", err)
	}

	// Ownership lookups for the purge coordinator
	for _, collName := range []string{ListsCollection, TierlistsCollection, CommentsCollection} {
		coll := db.Collection(collName)
		idx := mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_idx"),
		}
		if err := createIndexIfNotExists(ctx, coll, idx, "userId_idx"); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", collName, err)
		}
	}

	return nil
}

func createReviewIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ReviewsCollection)

	indexes := []struct {
		name  string
		model mongo.IndexModel
	}{
		{
			name: "userId_idx",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetName("userId_idx"),
			},
		},
		{
			name: "gameId_idx",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "gameId", Value: 1}},
				Options: options.Index().SetName("gameId_idx"),
			},
		},
		{
			// The weekly ranking job filters reviews by age
			name: "createdAt_idx",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("createdAt_idx"),
			},
		},
		{
			// One review per user per game
			name: "userId_and_gameId_unique",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "userId", Value: 1}, {Key: "gameId", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("userId_and_gameId_unique"),
			},
		},
	}

	for _, idx := range indexes {
		if err := createIndexIfNotExists(ctx, coll, idx.model, idx.name); err != nil {
			return err
		}
	}

	return nil
}

func createIdentityIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(IdentitiesCollection)
	indexName := "username_unique"

	idx := mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName(indexName).
			SetCollation(&options.Collation{
				Locale:   "en",
				Strength: 2,
			}),
	}
	return createIndexIfNotExists(ctx, coll, idx, indexName)
}

func createIndexIfNotExists(ctx context.Context, coll *mongo.Collection, model mongo.IndexModel, name string) error {
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes for collection '%s': %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			return fmt.Errorf("failed to decode index for collection '%s': %w", coll.Name(), err)
		}
		if indexName, ok := index["name"].(string); ok && indexName == name {
			return nil
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor error for collection '%s': %w", coll.Name(), err)
	}

	if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create index '%s' on collection '%s': %w", name, coll.Name(), err)
	}
	return nil
}
