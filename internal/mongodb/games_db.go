package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ----- Types for the database -----

// GameRatingDb is the per-game rating aggregate stored in gameSpecificReviews.
// Histogram keys are the ten rating buckets as strings ("0.5" .. "5").
type GameRatingDb struct {
	GameId     string         `json:"gameId" bson:"_id"`
	Histogram  map[string]int `json:"histogram" bson:"histogram"`
	MeanRating float64        `json:"meanRating" bson:"meanRating"`
	ReviewIds  []string       `json:"reviewIds" bson:"reviewIds"`
	UpdatedAt  time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// ----- Methods for the database -----

func (db *DB) GetGameRating(ctx context.Context, gameId string) (GameRatingDb, error) {
	coll := db.Collection(GameReviewsCollection)

	var game GameRatingDb
	if err := coll.FindOne(ctx, bson.M{"_id": gameId}).Decode(&game); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return GameRatingDb{}, ErrRecordNotFound
		}
		return GameRatingDb{}, err
	}
	return game, nil
}

func (db *DB) GameRatingExists(ctx context.Context, gameId string) (bool, error) {
	coll := db.Collection(GameReviewsCollection)

	err := coll.FindOne(ctx, bson.M{"_id": gameId}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (db *DB) InsertGameRating(ctx context.Context, game GameRatingDb) error {
	coll := db.Collection(GameReviewsCollection)

	game.UpdatedAt = time.Now()
	_, err := coll.InsertOne(ctx, game)
	return err
}

// AddReviewToGame appends a review id to the aggregate's reviewIds set.
func (db *DB) AddReviewToGame(ctx context.Context, gameId, reviewId string) error {
	coll := db.Collection(GameReviewsCollection)

	update := bson.M{
		"$addToSet": bson.M{"reviewIds": reviewId},
		"$set":      bson.M{"updatedAt": time.Now()},
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": gameId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetGameRating writes only the recomputed histogram and mean, leaving
// reviewIds untouched to keep the lost-update window small.
func (db *DB) SetGameRating(ctx context.Context, gameId string, histogram map[string]int, mean float64) error {
	coll := db.Collection(GameReviewsCollection)

	update := bson.M{"$set": bson.M{
		"histogram":  histogram,
		"meanRating": mean,
		"updatedAt":  time.Now(),
	}}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": gameId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// PullGameReviews removes review ids from the aggregate's reviewIds set.
func (db *DB) PullGameReviews(ctx context.Context, gameId string, reviewIds []string) error {
	if len(reviewIds) == 0 {
		return nil
	}

	coll := db.Collection(GameReviewsCollection)
	update := bson.M{
		"$pull": bson.M{"reviewIds": bson.M{"$in": reviewIds}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": gameId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (db *DB) DeleteGameRating(ctx context.Context, gameId string) (bool, error) {
	coll := db.Collection(GameReviewsCollection)

	res, err := coll.DeleteOne(ctx, bson.M{"_id": gameId})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (db *DB) GetAllGameRatings(ctx context.Context) ([]GameRatingDb, error) {
	coll := db.Collection(GameReviewsCollection)

	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var games []GameRatingDb
	if err := cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}
