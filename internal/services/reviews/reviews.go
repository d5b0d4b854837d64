// Package reviews is the review lifecycle: every create, rating edit, and
// delete flows through here so the game aggregate and the author's
// recommendations stay in step with the review documents.
package reviews

import (
	"context"
	"time"

	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/aggregates"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/recommend"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Create inserts the review, registers it with the game's rating aggregate,
// and, when the rating clears the recommendation threshold, credits the
// review's similar games to the author's recommendations.
func Create(ctx context.Context, db *mongodb.DB, req NewReview) (mongodb.ReviewDb, error) {
	if !aggregates.ValidBucket(req.RatingValue) {
		return mongodb.ReviewDb{}, aggregates.ErrInvalidRating
	}

	now := time.Now()
	review := mongodb.ReviewDb{
		Id:          primitive.NewObjectID().Hex(),
		UserId:      req.UserId,
		GameId:      req.GameId,
		RatingValue: req.RatingValue,
		TextBody:    req.TextBody,
		Upvotes:     []string{},
		Downvotes:   []string{},
		CommentIds:  []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := db.InsertReview(ctx, review); err != nil {
		return mongodb.ReviewDb{}, err
	}

	if err := aggregates.AttachReview(ctx, db, review); err != nil {
		return mongodb.ReviewDb{}, err
	}

	if err := db.AddOwnedId(ctx, req.UserId, "reviews", review.Id); err != nil {
		return mongodb.ReviewDb{}, err
	}

	if review.RatingValue >= recommend.Threshold {
		if err := recommend.AddSimilarGames(ctx, db, req.UserId, req.GameId, req.SimilarGameIds); err != nil {
			return mongodb.ReviewDb{}, err
		}
	}

	return review, nil
}

// ChangeRating updates a review's rating, recomputes the game aggregate, and
// adjusts recommendations when the rating crosses the threshold in either
// direction.
func ChangeRating(ctx context.Context, db *mongodb.DB, reviewId string, change RatingChange) (mongodb.ReviewDb, error) {
	if !aggregates.ValidBucket(change.RatingValue) {
		return mongodb.ReviewDb{}, aggregates.ErrInvalidRating
	}

	review, err := db.GetReviewById(ctx, reviewId)
	if err != nil {
		return mongodb.ReviewDb{}, err
	}

	oldRating := review.RatingValue
	newRating := change.RatingValue
	if oldRating == newRating {
		return review, nil
	}

	if err := db.SetReviewRating(ctx, reviewId, newRating); err != nil {
		return mongodb.ReviewDb{}, err
	}
	review.RatingValue = newRating

	if err := aggregates.RecomputeGameRating(ctx, db, review.GameId); err != nil {
		return mongodb.ReviewDb{}, err
	}

	crossedUp := oldRating < recommend.Threshold && newRating >= recommend.Threshold
	crossedDown := oldRating >= recommend.Threshold && newRating < recommend.Threshold

	switch {
	case crossedUp:
		err = recommend.AddSimilarGames(ctx, db, review.UserId, review.GameId, change.SimilarGameIds)
	case crossedDown:
		err = recommend.RemoveSimilarGames(ctx, db, review.UserId, review.GameId, change.SimilarGameIds)
	}
	if err != nil {
		return mongodb.ReviewDb{}, err
	}

	return review, nil
}

// Delete removes a review, detaches it from the game aggregate (deleting the
// aggregate if this was the game's last review), and debits the author's
// recommendations when the review had been feeding them.
func Delete(ctx context.Context, db *mongodb.DB, reviewId string, similarGameIds []string) error {
	review, err := db.GetReviewById(ctx, reviewId)
	if err != nil {
		return err
	}

	if _, err := db.DeleteReviewById(ctx, reviewId); err != nil {
		return err
	}

	if err := aggregates.DetachReviews(ctx, db, review.GameId, []string{reviewId}); err != nil {
		return err
	}

	if err := db.PullOwnedId(ctx, review.UserId, "reviews", reviewId); err != nil {
		return err
	}

	if review.RatingValue >= recommend.Threshold {
		if err := recommend.RemoveSimilarGames(ctx, db, review.UserId, review.GameId, similarGameIds); err != nil {
			return err
		}
	}

	return nil
}
