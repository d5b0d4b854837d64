package mongodb

import (
	"time"
)

// ----- Types for the database -----

type ListDb struct {
	Id        string    `json:"id" bson:"_id"`
	UserId    string    `json:"userId" bson:"userId"`
	Title     string    `json:"title" bson:"title"`
	GameIds   []string  `json:"gameIds" bson:"gameIds"`
	Upvotes   []string  `json:"upvotes" bson:"upvotes"`
	Downvotes []string  `json:"downvotes" bson:"downvotes"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type TierlistDb struct {
	Id        string              `json:"id" bson:"_id"`
	UserId    string              `json:"userId" bson:"userId"`
	Title     string              `json:"title" bson:"title"`
	Tiers     map[string][]string `json:"tiers" bson:"tiers"`
	Upvotes   []string            `json:"upvotes" bson:"upvotes"`
	Downvotes []string            `json:"downvotes" bson:"downvotes"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Lists and tierlists are only read and deleted by this service; creation and
// editing happen through the frontend's own writes. Ownership queries and
// deletes go through the generic helpers in crud.go (IdsByUserId,
// DeleteByUserId, StripUserVotes).
