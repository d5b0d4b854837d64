package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ----- Types for the database -----

// IdentityDb is the authentication identity anchoring a user account.
// Its _id is the owning user's id.
type IdentityDb struct {
	UserId       string    `json:"userId" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// ----- Methods for the database -----

func (db *DB) InsertIdentity(ctx context.Context, identity IdentityDb) error {
	coll := db.Collection(IdentitiesCollection)
	_, err := coll.InsertOne(ctx, identity)
	return err
}

func (db *DB) GetIdentityByUsername(ctx context.Context, username string) (IdentityDb, error) {
	coll := db.Collection(IdentitiesCollection)

	var identity IdentityDb
	if err := coll.FindOne(ctx, bson.M{"username": username}).Decode(&identity); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return IdentityDb{}, ErrRecordNotFound
		}
		return IdentityDb{}, err
	}
	return identity, nil
}

func (db *DB) DeleteIdentityByUserId(ctx context.Context, userId string) (bool, error) {
	coll := db.Collection(IdentitiesCollection)

	res, err := coll.DeleteOne(ctx, bson.M{"_id": userId})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
