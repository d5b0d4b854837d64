package mongodb

import (
	"time"
)

// ----- Types for the database -----

type CommentDb struct {
	Id        string    `json:"id" bson:"_id"`
	UserId    string    `json:"userId" bson:"userId"`
	ReviewId  string    `json:"reviewId" bson:"reviewId"`
	TextBody  string    `json:"textBody" bson:"textBody"`
	Upvotes   []string  `json:"upvotes" bson:"upvotes"`
	Downvotes []string  `json:"downvotes" bson:"downvotes"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
