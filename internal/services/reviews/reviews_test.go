package reviews_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/aggregates"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/reviews"
	"github.com/Soobster/leaderboard-main-sub000/internal/testdb"
	"github.com/stretchr/testify/require"
)

var tdb *testdb.TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	var cleanup func()
	var err error
	tdb, cleanup, err = testdb.Start(ctx)
	if err != nil {
		log.Fatalf("failed to start test mongo: %v", err)
	}

	code := m.Run()
	cleanup()
	os.Exit(code)
}

func seedUser(t *testing.T, id string) {
	t.Helper()

	user := mongodb.UserDb{
		Id:             id,
		Username:       "user-" + id,
		Reviews:        []string{},
		Lists:          []string{},
		Tierlists:      []string{},
		Comments:       []string{},
		Followers:      []string{},
		Following:      []string{},
		Backlog:        []string{},
		Recommended:    map[string]int{},
		TopRecommended: []string{},
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, tdb.DB.InsertUser(context.Background(), user))
}

func TestCreateSeedsGameAggregate(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "u1")

	review, err := reviews.Create(ctx, tdb.DB, reviews.NewReview{
		UserId:      "u1",
		GameId:      "game-a",
		RatingValue: 4,
		TextBody:    "solid",
	})
	require.NoError(t, err)
	require.NotEmpty(t, review.Id)

	rating, err := tdb.DB.GetGameRating(ctx, "game-a")
	require.NoError(t, err)
	require.Equal(t, 4.0, rating.MeanRating)
	require.Equal(t, 1, rating.Histogram["4"])
	require.Equal(t, []string{review.Id}, rating.ReviewIds)

	user, err := tdb.DB.GetUserById(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{review.Id}, user.Reviews)
}

func TestCreateRejectsInvalidRating(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "u1")

	_, err := reviews.Create(ctx, tdb.DB, reviews.NewReview{
		UserId:      "u1",
		GameId:      "game-a",
		RatingValue: 4.3,
	})
	require.ErrorIs(t, err, aggregates.ErrInvalidRating)

	exists, err := tdb.DB.GameRatingExists(ctx, "game-a")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestCreateAboveThresholdFeedsRecommendations(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "u1")

	_, err := reviews.Create(ctx, tdb.DB, reviews.NewReview{
		UserId:         "u1",
		GameId:         "game-a",
		RatingValue:    4.5,
		SimilarGameIds: []string{"game-b", "game-c"},
	})
	require.NoError(t, err)

	user, err := tdb.DB.GetUserById(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"game-b": 1, "game-c": 1}, user.Recommended)
}

func TestCreateBelowThresholdLeavesRecommendationsAlone(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "u1")

	_, err := reviews.Create(ctx, tdb.DB, reviews.NewReview{
		UserId:         "u1",
		GameId:         "game-a",
		RatingValue:    3,
		SimilarGameIds: []string{"game-b", "game-c"},
	})
	require.NoError(t, err)

	user, err := tdb.DB.GetUserById(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, user.Recommended)
}

func TestChangeRatingCrossingThreshold(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "u1")

	similar := []string{"game-b", "game-c"}
	review, err := reviews.Create(ctx, tdb.DB, reviews.NewReview{
		UserId:         "u1",
		GameId:         "game-a",
		RatingValue:    2,
		SimilarGameIds: similar,
	})
	require.NoError(t, err)

	// cross up
	_, err = reviews.ChangeRating(ctx, tdb.DB, review.Id, reviews.RatingChange{
		RatingValue:    4.5,
		SimilarGameIds: similar,
	})
	require.NoError(t, err)

	user, err := tdb.DB.GetUserById(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"game-b": 1, "game-c": 1}, user.Recommended)

	rating, err := tdb.DB.GetGameRating(ctx, "game-a")
	require.NoError(t, err)
	require.Equal(t, 4.5, rating.MeanRating)
	require.Equal(t, 1, rating.Histogram["4.5"])
	require.Zero(t, rating.Histogram["2"])

	// cross back down
	_, err = reviews.ChangeRating(ctx, tdb.DB, review.Id, reviews.RatingChange{
		RatingValue:    1.5,
		SimilarGameIds: similar,
	})
	require.NoError(t, err)

	user, err = tdb.DB.GetUserById(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, user.Recommended)
	require.Empty(t, user.TopRecommended)
}

func TestChangeRatingSameValueIsNoOp(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "u1")

	review, err := reviews.Create(ctx, tdb.DB, reviews.NewReview{
		UserId:      "u1",
		GameId:      "game-a",
		RatingValue: 3,
	})
	require.NoError(t, err)

	updated, err := reviews.ChangeRating(ctx, tdb.DB, review.Id, reviews.RatingChange{RatingValue: 3})
	require.NoError(t, err)
	require.Equal(t, review.RatingValue, updated.RatingValue)
}

func TestDeleteLastReviewRemovesAggregate(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "u1")

	review, err := reviews.Create(ctx, tdb.DB, reviews.NewReview{
		UserId:      "u1",
		GameId:      "game-a",
		RatingValue: 5,
	})
	require.NoError(t, err)

	require.NoError(t, reviews.Delete(ctx, tdb.DB, review.Id, nil))

	exists, err := tdb.DB.GameRatingExists(ctx, "game-a")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = tdb.DB.GetReviewById(ctx, review.Id)
	require.ErrorIs(t, err, mongodb.ErrRecordNotFound)

	user, err := tdb.DB.GetUserById(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, user.Reviews)
}

func TestDeleteRecomputesAggregateFromSurvivors(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "u1")
	seedUser(t, "u2")

	r1, err := reviews.Create(ctx, tdb.DB, reviews.NewReview{UserId: "u1", GameId: "game-a", RatingValue: 5})
	require.NoError(t, err)
	_, err = reviews.Create(ctx, tdb.DB, reviews.NewReview{UserId: "u2", GameId: "game-a", RatingValue: 2})
	require.NoError(t, err)

	require.NoError(t, reviews.Delete(ctx, tdb.DB, r1.Id, nil))

	rating, err := tdb.DB.GetGameRating(ctx, "game-a")
	require.NoError(t, err)
	require.Equal(t, 2.0, rating.MeanRating)
	require.Equal(t, 1, rating.Histogram["2"])
	require.Zero(t, rating.Histogram["5"])
	require.Len(t, rating.ReviewIds, 1)
}

func TestDeleteAboveThresholdDebitsRecommendations(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "u1")

	similar := []string{"game-b", "game-c"}
	review, err := reviews.Create(ctx, tdb.DB, reviews.NewReview{
		UserId:         "u1",
		GameId:         "game-a",
		RatingValue:    4,
		SimilarGameIds: similar,
	})
	require.NoError(t, err)

	require.NoError(t, reviews.Delete(ctx, tdb.DB, review.Id, similar))

	user, err := tdb.DB.GetUserById(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, user.Recommended)
	require.Empty(t, user.TopRecommended)
}
