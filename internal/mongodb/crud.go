package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrRecordNotFound = errors.New("record not found in the database")

// StripUserVotes removes a user id from the upvotes and downvotes arrays of
// every document in the given collection.
func (db *DB) StripUserVotes(ctx context.Context, collection, userId string) (int64, error) {
	coll := db.Collection(collection)

	filter := bson.M{"$or": []bson.M{
		{"upvotes": userId},
		{"downvotes": userId},
	}}
	update := bson.M{"$pull": bson.M{
		"upvotes":   userId,
		"downvotes": userId,
	}}

	res, err := coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteByUserId deletes every document owned by userId in the given collection.
func (db *DB) DeleteByUserId(ctx context.Context, collection, userId string) (int64, error) {
	coll := db.Collection(collection)

	res, err := coll.DeleteMany(ctx, bson.M{"userId": userId})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IdsByUserId returns the _id of every document owned by userId in the given
// collection, using a projection to avoid loading full documents.
func (db *DB) IdsByUserId(ctx context.Context, collection, userId string) ([]string, error) {
	coll := db.Collection(collection)

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := coll.Find(ctx, bson.M{"userId": userId}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}

	return ids, cursor.Err()
}
