package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ----- Types for the database -----

type UserDb struct {
	Id             string         `json:"id" bson:"_id"`
	Username       string         `json:"username" bson:"username"`
	Email          string         `json:"email" bson:"email"`
	Role           string         `json:"role" bson:"role"`
	Reviews        []string       `json:"reviews" bson:"reviews"`
	Lists          []string       `json:"lists" bson:"lists"`
	Tierlists      []string       `json:"tierlists" bson:"tierlists"`
	Comments       []string       `json:"comments" bson:"comments"`
	Followers      []string       `json:"followers" bson:"followers"`
	Following      []string       `json:"following" bson:"following"`
	Backlog        []string       `json:"backlog" bson:"backlog"`
	Recommended    map[string]int `json:"recommended" bson:"recommended"`
	TopRecommended []string       `json:"topRecommended" bson:"topRecommended"`
	IsActive       bool           `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// ----- Methods for the database -----

func (db *DB) InsertUser(ctx context.Context, user UserDb) error {
	coll := db.Collection(UsersCollection)
	_, err := coll.InsertOne(ctx, user)
	return err
}

func (db *DB) GetUserById(ctx context.Context, id string) (UserDb, error) {
	coll := db.Collection(UsersCollection)

	var user UserDb
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return UserDb{}, ErrRecordNotFound
		}
		return UserDb{}, err
	}
	return user, nil
}

func (db *DB) UserExists(ctx context.Context, id string) (bool, error) {
	coll := db.Collection(UsersCollection)

	// Only ask MongoDB for the _id field
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})

	err := coll.FindOne(ctx, bson.M{"_id": id}, opts).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AddOwnedId appends a document id to one of the user's owned-id arrays
// (reviews, lists, tierlists, comments).
func (db *DB) AddOwnedId(ctx context.Context, userId, field, docId string) error {
	coll := db.Collection(UsersCollection)

	update := bson.M{
		"$addToSet": bson.M{field: docId},
		"$set":      bson.M{"updatedAt": time.Now()},
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": userId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (db *DB) PullOwnedId(ctx context.Context, userId, field, docId string) error {
	coll := db.Collection(UsersCollection)

	update := bson.M{
		"$pull": bson.M{field: docId},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": userId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ApplyRecommendedDelta applies counter increments and key removals to the
// user's recommended map in a single server-side update, so concurrent
// review-lifecycle events never read-modify-write each other's counts.
func (db *DB) ApplyRecommendedDelta(ctx context.Context, userId string, inc map[string]int, unset []string) error {
	if len(inc) == 0 && len(unset) == 0 {
		return nil
	}

	coll := db.Collection(UsersCollection)

	update := bson.M{"$set": bson.M{"updatedAt": time.Now()}}
	if len(inc) > 0 {
		incDoc := bson.M{}
		for gameId, delta := range inc {
			incDoc[fmt.Sprintf("recommended.%s", gameId)] = delta
		}
		update["$inc"] = incDoc
	}
	if len(unset) > 0 {
		unsetDoc := bson.M{}
		for _, gameId := range unset {
			unsetDoc[fmt.Sprintf("recommended.%s", gameId)] = ""
		}
		update["$unset"] = unsetDoc
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": userId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (db *DB) SetTopRecommended(ctx context.Context, userId string, topRecommended []string) error {
	coll := db.Collection(UsersCollection)

	update := bson.M{"$set": bson.M{
		"topRecommended": topRecommended,
		"updatedAt":      time.Now(),
	}}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": userId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (db *DB) AddToBacklog(ctx context.Context, userId, gameId string) error {
	coll := db.Collection(UsersCollection)

	update := bson.M{
		"$addToSet": bson.M{"backlog": gameId},
		"$set":      bson.M{"updatedAt": time.Now()},
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": userId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// StripUserFromFollows removes a user id from every other user's followers
// and following arrays.
func (db *DB) StripUserFromFollows(ctx context.Context, userId string) (int64, error) {
	coll := db.Collection(UsersCollection)

	filter := bson.M{"$or": []bson.M{
		{"followers": userId},
		{"following": userId},
	}}
	update := bson.M{"$pull": bson.M{
		"followers": userId,
		"following": userId,
	}}

	res, err := coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (db *DB) DeleteUserById(ctx context.Context, id string) (bool, error) {
	coll := db.Collection(UsersCollection)

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
