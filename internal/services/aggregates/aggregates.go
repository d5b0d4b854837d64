// Package aggregates maintains the per-game rating aggregate stored in the
// gameSpecificReviews collection: a ten-bucket star histogram, the mean
// rating, and the set of contributing review ids.
package aggregates

import (
	"context"
	"errors"
	"fmt"

	"github.com/Soobster/leaderboard-main-sub000/internal/logx"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
)

// Buckets are the only valid rating values, in ascending order.
var Buckets = []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5}

var ErrInvalidRating = errors.New("rating must be one of the half-star values between 0.5 and 5")

func ValidBucket(rating float64) bool {
	doubled := rating * 2
	return doubled == float64(int(doubled)) && rating >= 0.5 && rating <= 5
}

// BucketKey formats a rating as its histogram map key ("0.5", "1", ... "5").
func BucketKey(rating float64) string {
	if rating == float64(int(rating)) {
		return fmt.Sprintf("%d", int(rating))
	}
	return fmt.Sprintf("%.1f", rating)
}

func EmptyHistogram() map[string]int {
	histogram := make(map[string]int, len(Buckets))
	for _, bucket := range Buckets {
		histogram[BucketKey(bucket)] = 0
	}
	return histogram
}

// AttachReview registers a newly created review with its game's aggregate,
// seeding the aggregate when this is the game's first review.
func AttachReview(ctx context.Context, db *mongodb.DB, review mongodb.ReviewDb) error {
	err := db.AddReviewToGame(ctx, review.GameId, review.Id)
	if errors.Is(err, mongodb.ErrRecordNotFound) {
		return seed(ctx, db, review)
	}
	if err != nil {
		return err
	}
	return RecomputeGameRating(ctx, db, review.GameId)
}

func seed(ctx context.Context, db *mongodb.DB, review mongodb.ReviewDb) error {
	histogram := EmptyHistogram()
	histogram[BucketKey(review.RatingValue)] = 1

	return db.InsertGameRating(ctx, mongodb.GameRatingDb{
		GameId:     review.GameId,
		Histogram:  histogram,
		MeanRating: review.RatingValue,
		ReviewIds:  []string{review.Id},
	})
}

// RecomputeGameRating rebuilds the histogram and mean from the aggregate's
// current review set. It is deterministic and idempotent; review ids that no
// longer resolve to a document are skipped, not fatal.
func RecomputeGameRating(ctx context.Context, db *mongodb.DB, gameId string) error {
	game, err := db.GetGameRating(ctx, gameId)
	if err != nil {
		return err
	}
	return recomputeFrom(ctx, db, gameId, game.ReviewIds)
}

func recomputeFrom(ctx context.Context, db *mongodb.DB, gameId string, reviewIds []string) error {
	reviews, err := db.GetReviewsByIds(ctx, reviewIds)
	if err != nil {
		return err
	}

	if len(reviews) < len(reviewIds) {
		logx.FromContext(ctx).Warn("skipping dangling review ids during recompute",
			"gameId", gameId,
			"expected", len(reviewIds),
			"resolved", len(reviews))
	}
	if len(reviews) == 0 {
		// Every referenced review dangles; leave the aggregate as-is rather
		// than writing a zeroed histogram.
		logx.FromContext(ctx).Warn("no resolvable reviews for game, skipping recompute", "gameId", gameId)
		return nil
	}

	histogram := EmptyHistogram()
	sum := 0.0
	for _, review := range reviews {
		histogram[BucketKey(review.RatingValue)]++
		sum += review.RatingValue
	}
	mean := sum / float64(len(reviews))

	return db.SetGameRating(ctx, gameId, histogram, mean)
}

// DetachReviews removes review ids from a game's aggregate. When no reviews
// remain the aggregate document is deleted outright; otherwise the histogram
// and mean are recomputed from the surviving ids only, so the result is
// correct even before the removed reviews are physically deleted.
func DetachReviews(ctx context.Context, db *mongodb.DB, gameId string, reviewIds []string) error {
	game, err := db.GetGameRating(ctx, gameId)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	removing := make(map[string]bool, len(reviewIds))
	for _, id := range reviewIds {
		removing[id] = true
	}

	var remaining []string
	for _, id := range game.ReviewIds {
		if !removing[id] {
			remaining = append(remaining, id)
		}
	}

	if len(remaining) == 0 {
		_, err := db.DeleteGameRating(ctx, gameId)
		return err
	}

	if err := db.PullGameReviews(ctx, gameId, reviewIds); err != nil {
		return err
	}
	return recomputeFrom(ctx, db, gameId, remaining)
}
