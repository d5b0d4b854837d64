package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ----- Types for the database -----

// WeeklyTopDb is the highestRated/games singleton.
type WeeklyTopDb struct {
	Id        string    `json:"id" bson:"_id"`
	Top10     []string  `json:"top10" bson:"top10"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ----- Methods for the database -----

func (db *DB) GetWeeklyTop(ctx context.Context) (WeeklyTopDb, error) {
	coll := db.Collection(HighestRatedCollection)

	var top WeeklyTopDb
	if err := coll.FindOne(ctx, bson.M{"_id": WeeklyTopDocID}).Decode(&top); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return WeeklyTopDb{}, ErrRecordNotFound
		}
		return WeeklyTopDb{}, err
	}
	return top, nil
}

// ReplaceWeeklyTop replaces the singleton wholesale, creating it on first run.
func (db *DB) ReplaceWeeklyTop(ctx context.Context, top10 []string, now time.Time) error {
	coll := db.Collection(HighestRatedCollection)

	doc := WeeklyTopDb{
		Id:        WeeklyTopDocID,
		Top10:     top10,
		UpdatedAt: now,
	}

	opts := options.Replace().SetUpsert(true)
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": WeeklyTopDocID}, doc, opts)
	return err
}
