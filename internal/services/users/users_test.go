package users_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/Soobster/leaderboard-main-sub000/internal/auth"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/recommend"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/users"
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

func TestCreateAndLogin(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()

	created, err := users.Create(ctx, tdb.DB, users.NewUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Id)
	require.Equal(t, "user", created.Role)
	require.True(t, created.IsActive)
	require.NotNil(t, created.Recommended)

	loggedIn, err := users.Login(ctx, tdb.DB, "alice", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, created.Id, loggedIn.Id)
}

func TestLoginWrongPassword(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()

	_, err := users.Create(ctx, tdb.DB, users.NewUserRequest{
		Username: "alice",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = users.Login(ctx, tdb.DB, "alice", "not-the-password")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	tdb.Reset(t)

	_, err := users.Login(context.Background(), tdb.DB, "nobody", "whatever")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAddToBacklogDropsRecommendation(t *testing.T) {
	tdb.Reset(t)
	ctx := context.Background()

	created, err := users.Create(ctx, tdb.DB, users.NewUserRequest{
		Username: "alice",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	require.NoError(t, recommend.AddSimilarGames(ctx, tdb.DB, created.Id, "game-x", []string{"game-a", "game-b"}))

	require.NoError(t, users.AddToBacklog(ctx, tdb.DB, created.Id, "game-a"))

	user, err := tdb.DB.GetUserById(ctx, created.Id)
	require.NoError(t, err)
	require.Contains(t, user.Backlog, "game-a")
	require.NotContains(t, user.Recommended, "game-a")
	require.NotContains(t, user.TopRecommended, "game-a")
	require.Contains(t, user.TopRecommended, "game-b")
}
