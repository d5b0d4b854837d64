package purge_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/purge"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/reviews"
	"github.com/Soobster/leaderboard-main-sub000/internal/testdb"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
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

	ctx := context.Background()
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
	require.NoError(t, tdb.DB.InsertUser(ctx, user))
	require.NoError(t, tdb.DB.InsertIdentity(ctx, mongodb.IdentityDb{
		UserId:    id,
		Username:  user.Username,
		CreatedAt: time.Now(),
	}))
}

func createReview(t *testing.T, userId, gameId string, rating float64) mongodb.ReviewDb {
	t.Helper()

	review, err := reviews.Create(context.Background(), tdb.DB, reviews.NewReview{
		UserId:      userId,
		GameId:      gameId,
		RatingValue: rating,
	})
	require.NoError(t, err)
	return review
}

func TestPurgeAccountRepairsGameAggregates(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "doomed")
	seedUser(t, "survivor")

	// doomed authored three reviews; survivor shares one game with them
	createReview(t, "doomed", "game-a", 5)
	createReview(t, "doomed", "game-b", 4)
	createReview(t, "doomed", "game-c", 3)
	sr := createReview(t, "survivor", "game-a", 2)

	report := purge.PurgeAccount(ctx, tdb.DB, "doomed")
	require.Empty(t, report.Failed())

	// shared game keeps only the survivor's review
	rating, err := tdb.DB.GetGameRating(ctx, "game-a")
	require.NoError(t, err)
	require.Equal(t, 2.0, rating.MeanRating)
	require.Equal(t, []string{sr.Id}, rating.ReviewIds)
	require.Equal(t, 1, rating.Histogram["2"])
	require.Zero(t, rating.Histogram["5"])

	// sole-reviewer games lose their aggregate entirely
	for _, gameId := range []string{"game-b", "game-c"} {
		exists, err := tdb.DB.GameRatingExists(ctx, gameId)
		require.NoError(t, err)
		require.False(t, exists)
	}

	remaining, err := tdb.DB.GetReviewsByUserId(ctx, "doomed")
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestPurgeAccountDeletesUserAndIdentityLast(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "doomed")

	report := purge.PurgeAccount(ctx, tdb.DB, "doomed")
	require.Empty(t, report.Failed())
	require.Equal(t, "doomed", report.UserId)
	require.NotEmpty(t, report.Results)
	require.Equal(t, "delete identity", report.Results[len(report.Results)-1].Task)

	_, err := tdb.DB.GetUserById(ctx, "doomed")
	require.ErrorIs(t, err, mongodb.ErrRecordNotFound)

	_, err = tdb.DB.GetIdentityByUsername(ctx, "user-doomed")
	require.ErrorIs(t, err, mongodb.ErrRecordNotFound)
}

func TestPurgeAccountStripsReferences(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "doomed")
	seedUser(t, "other")

	otherReview := createReview(t, "other", "game-a", 4)

	// doomed voted on other's review and commented on it
	_, err := tdb.DB.Collection(mongodb.ReviewsCollection).UpdateOne(ctx,
		bson.M{"_id": otherReview.Id},
		bson.M{"$addToSet": bson.M{
			"upvotes":    "doomed",
			"commentIds": "c1",
		}})
	require.NoError(t, err)

	_, err = tdb.DB.Collection(mongodb.CommentsCollection).InsertOne(ctx, mongodb.CommentDb{
		Id:        "c1",
		UserId:    "doomed",
		ReviewId:  otherReview.Id,
		TextBody:  "nice",
		Upvotes:   []string{},
		Downvotes: []string{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	// mutual follow
	_, err = tdb.DB.Collection(mongodb.UsersCollection).UpdateOne(ctx,
		bson.M{"_id": "other"},
		bson.M{"$addToSet": bson.M{
			"followers": "doomed",
			"following": "doomed",
		}})
	require.NoError(t, err)

	report := purge.PurgeAccount(ctx, tdb.DB, "doomed")
	require.Empty(t, report.Failed())

	review, err := tdb.DB.GetReviewById(ctx, otherReview.Id)
	require.NoError(t, err)
	require.NotContains(t, review.Upvotes, "doomed")
	require.NotContains(t, review.CommentIds, "c1")

	other, err := tdb.DB.GetUserById(ctx, "other")
	require.NoError(t, err)
	require.NotContains(t, other.Followers, "doomed")
	require.NotContains(t, other.Following, "doomed")

	ids, err := tdb.DB.IdsByUserId(ctx, mongodb.CommentsCollection, "doomed")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestPurgeAccountDeletesOwnedListsAndTierlists(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()
	seedUser(t, "doomed")

	_, err := tdb.DB.Collection(mongodb.ListsCollection).InsertOne(ctx, mongodb.ListDb{
		Id:        "l1",
		UserId:    "doomed",
		Title:     "favorites",
		GameIds:   []string{"game-a"},
		Upvotes:   []string{},
		Downvotes: []string{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = tdb.DB.Collection(mongodb.TierlistsCollection).InsertOne(ctx, mongodb.TierlistDb{
		Id:        "t1",
		UserId:    "doomed",
		Title:     "ranked",
		Tiers:     map[string][]string{"S": {"game-a"}},
		Upvotes:   []string{},
		Downvotes: []string{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	report := purge.PurgeAccount(ctx, tdb.DB, "doomed")
	require.Empty(t, report.Failed())

	for _, collection := range []string{mongodb.ListsCollection, mongodb.TierlistsCollection} {
		ids, err := tdb.DB.IdsByUserId(ctx, collection, "doomed")
		require.NoError(t, err)
		require.Empty(t, ids)
	}
}

func TestPurgeAccountReportsMissingUser(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()

	// purging a user that never existed still runs every task and succeeds:
	// deletes of nothing are not errors
	report := purge.PurgeAccount(ctx, tdb.DB, "ghost")
	require.Empty(t, report.Failed())
}
