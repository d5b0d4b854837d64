package mongodb

import (
	"context"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names are the wire contract the frontend depends on; do not
// rename without migrating the client.
const (
	ReviewsCollection      = "reviews"
	GameReviewsCollection  = "gameSpecificReviews"
	UsersCollection        = "users"
	ListsCollection        = "lists"
	TierlistsCollection    = "tierlists"
	CommentsCollection     = "comments"
	HighestRatedCollection = "highestRated"
	IdentitiesCollection   = "identities"
)

// WeeklyTopDocID is the fixed id of the highestRated singleton document.
const WeeklyTopDocID = "games"

type DB struct {
	client *mongo.Client
	dbName string
}

// Connect connects to MongoDB using MONGODB_URI and verifies the connection with a ping.
func Connect(ctx context.Context) (*mongo.Client, error) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		return nil, fmt.Errorf("MONGODB_URI is required (e.g. mongodb://localhost:27017)")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}

	return client, nil
}

func NewDB(client *mongo.Client) *DB {
	name := os.Getenv("MONGODB_DB")
	if name == "" {
		name = "leaderboard"
	}
	return &DB{client: client, dbName: name}
}

func (db *DB) GetDatabaseName() string {
	return db.dbName
}

func (db *DB) Collection(name string) *mongo.Collection {
	return db.client.Database(db.dbName).Collection(name)
}
