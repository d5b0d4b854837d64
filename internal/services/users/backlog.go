package users

import (
	"context"

	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/recommend"
)

// AddToBacklog puts a game on the user's backlog and evicts it from the
// recommendation state; a game the user plans to play is no longer a
// suggestion.
func AddToBacklog(ctx context.Context, db *mongodb.DB, userId, gameId string) error {
	if err := db.AddToBacklog(ctx, userId, gameId); err != nil {
		return err
	}
	return recommend.OnBacklogAdd(ctx, db, userId, gameId)
}
