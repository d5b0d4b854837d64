package reviews

import "github.com/Soobster/leaderboard-main-sub000/internal/mongodb"

type NewReview struct {
	UserId         string   `json:"userId"`
	GameId         string   `json:"gameId" validate:"required"`
	RatingValue    float64  `json:"ratingValue" validate:"required,ratingbucket"`
	TextBody       string   `json:"textBody"`
	SimilarGameIds []string `json:"similarGameIds"`
}

type RatingChange struct {
	RatingValue    float64  `json:"ratingValue" validate:"required,ratingbucket"`
	SimilarGameIds []string `json:"similarGameIds"`
}

type ReviewResponse struct {
	Review mongodb.ReviewDb `json:"review"`
}
