package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ----- Types for the database -----

type ReviewDb struct {
	Id          string    `json:"id" bson:"_id"`
	UserId      string    `json:"userId" bson:"userId"`
	GameId      string    `json:"gameId" bson:"gameId"`
	RatingValue float64   `json:"ratingValue" bson:"ratingValue"`
	TextBody    string    `json:"textBody" bson:"textBody"`
	Upvotes     []string  `json:"upvotes" bson:"upvotes"`
	Downvotes   []string  `json:"downvotes" bson:"downvotes"`
	CommentIds  []string  `json:"commentIds" bson:"commentIds"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ----- Methods for the database -----

func (db *DB) InsertReview(ctx context.Context, review ReviewDb) error {
	coll := db.Collection(ReviewsCollection)
	_, err := coll.InsertOne(ctx, review)
	return err
}

func (db *DB) GetReviewById(ctx context.Context, id string) (ReviewDb, error) {
	coll := db.Collection(ReviewsCollection)

	var review ReviewDb
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ReviewDb{}, ErrRecordNotFound
		}
		return ReviewDb{}, err
	}
	return review, nil
}

// GetReviewsByIds resolves a set of review ids. Ids with no backing document
// are simply absent from the result; callers that care about drift can compare
// lengths.
func (db *DB) GetReviewsByIds(ctx context.Context, ids []string) ([]ReviewDb, error) {
	if len(ids) == 0 {
		return []ReviewDb{}, nil
	}

	coll := db.Collection(ReviewsCollection)
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []ReviewDb
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (db *DB) GetReviewsByUserId(ctx context.Context, userId string) ([]ReviewDb, error) {
	coll := db.Collection(ReviewsCollection)

	cursor, err := coll.Find(ctx, bson.M{"userId": userId})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []ReviewDb
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetReviewedGameIds returns which of the candidate game ids the user has
// already reviewed.
func (db *DB) GetReviewedGameIds(ctx context.Context, userId string, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	coll := db.Collection(ReviewsCollection)
	filter := bson.M{"userId": userId, "gameId": bson.M{"$in": candidates}}

	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var gameIds []string
	for cursor.Next(ctx) {
		var doc struct {
			GameId string `bson:"gameId"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		gameIds = append(gameIds, doc.GameId)
	}

	return gameIds, cursor.Err()
}

func (db *DB) SetReviewRating(ctx context.Context, id string, rating float64) error {
	coll := db.Collection(ReviewsCollection)

	update := bson.M{"$set": bson.M{
		"ratingValue": rating,
		"updatedAt":   time.Now(),
	}}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (db *DB) DeleteReviewById(ctx context.Context, id string) (bool, error) {
	coll := db.Collection(ReviewsCollection)

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// StripCommentIds removes the given comment ids from every review's commentIds array.
func (db *DB) StripCommentIds(ctx context.Context, commentIds []string) (int64, error) {
	if len(commentIds) == 0 {
		return 0, nil
	}

	coll := db.Collection(ReviewsCollection)
	filter := bson.M{"commentIds": bson.M{"$in": commentIds}}
	update := bson.M{"$pull": bson.M{"commentIds": bson.M{"$in": commentIds}}}

	res, err := coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
