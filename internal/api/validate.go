package api

import (
	"github.com/Soobster/leaderboard-main-sub000/internal/services/aggregates"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// ratingbucket restricts a float64 to the ten valid half-star values.
	_ = v.RegisterValidation("ratingbucket", func(fl validator.FieldLevel) bool {
		return aggregates.ValidBucket(fl.Field().Float())
	})

	return v
}
