// Package ranking implements the daily "top 10 games of the past week" job.
package ranking

import (
	"context"
	"sort"
	"time"

	"github.com/Soobster/leaderboard-main-sub000/internal/logx"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
)

const (
	// WindowDays is the trailing window of review activity that counts.
	WindowDays = 7

	// TopSize caps the published leaderboard.
	TopSize = 10

	// perGameTimeout bounds each game's review fetch so one hung read cannot
	// stall the whole daily run.
	perGameTimeout = 15 * time.Second
)

type gameScore struct {
	gameId string
	score  float64
}

// InWindow reports whether a review created at createdAt still counts toward
// the weekly score at reference time now. Age is measured in whole elapsed
// days: floor(elapsed_ms / 86_400_000) < 7.
func InWindow(createdAt, now time.Time) bool {
	elapsedMs := now.Sub(createdAt).Milliseconds()
	if elapsedMs < 0 {
		return false
	}
	return elapsedMs/86_400_000 < WindowDays
}

// RecomputeWeeklyTop rebuilds the highestRated/games singleton from scratch.
// now is passed in rather than read from the clock so the window is
// deterministic under test. Each game's weekly score is the mean of its
// reviews created inside the window; games with no windowed reviews are
// excluded, not scored as zero. Games whose reviews cannot be fetched are
// logged and excluded. When nothing can be scored the previous document is
// left untouched.
func RecomputeWeeklyTop(ctx context.Context, db *mongodb.DB, now time.Time) error {
	logger := logx.FromContext(ctx)

	games, err := db.GetAllGameRatings(ctx)
	if err != nil {
		return err
	}

	var scored []gameScore
	for _, game := range games {
		score, ok := weeklyScore(ctx, db, game, now)
		if ok {
			scored = append(scored, gameScore{gameId: game.GameId, score: score})
		}
	}

	if len(scored) == 0 {
		logger.Info("weekly top: no games with review activity in window, keeping previous list")
		return nil
	}

	// Score descending, game id ascending as the tie-break for determinism
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].gameId < scored[j].gameId
	})

	if len(scored) > TopSize {
		scored = scored[:TopSize]
	}

	top10 := make([]string, len(scored))
	for i, gs := range scored {
		top10[i] = gs.gameId
	}

	if err := db.ReplaceWeeklyTop(ctx, top10, now); err != nil {
		return err
	}

	logger.Info("weekly top recomputed", "games", len(top10))
	return nil
}

func weeklyScore(ctx context.Context, db *mongodb.DB, game mongodb.GameRatingDb, now time.Time) (float64, bool) {
	gameCtx, cancel := context.WithTimeout(ctx, perGameTimeout)
	defer cancel()

	reviews, err := db.GetReviewsByIds(gameCtx, game.ReviewIds)
	if err != nil {
		logx.FromContext(ctx).Warn("weekly top: failed to load reviews, excluding game",
			"gameId", game.GameId, "error", err)
		return 0, false
	}

	sum := 0.0
	count := 0
	for _, review := range reviews {
		if InWindow(review.CreatedAt, now) {
			sum += review.RatingValue
			count++
		}
	}
	if count == 0 {
		return 0, false
	}

	return sum / float64(count), true
}
