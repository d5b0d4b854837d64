// Package recommend maintains each user's recommendation counters: a
// recommended[gameId] = count multiset fed by the similar-games lists of
// reviews rated at or above the threshold, and the derived topRecommended
// ranking shown on the profile page.
package recommend

import (
	"context"
	"errors"
	"sort"

	"github.com/Soobster/leaderboard-main-sub000/internal/logx"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/cenkalti/backoff/v4"
)

// Threshold is the rating at which a review starts feeding recommendations.
const Threshold = 3.5

// TopSize bounds the derived topRecommended list.
const TopSize = 10

// AddSimilarGames credits every candidate similar game with one count on the
// user's recommendation multiset. Candidates already in the user's backlog or
// already reviewed by the user are skipped. The game the user just reviewed
// stops being a recommendation itself.
func AddSimilarGames(ctx context.Context, db *mongodb.DB, userId, reviewedGameId string, similarGameIds []string) error {
	user, err := db.GetUserById(ctx, userId)
	if err != nil {
		return err
	}

	backlog := make(map[string]bool, len(user.Backlog))
	for _, gameId := range user.Backlog {
		backlog[gameId] = true
	}

	reviewedIds, err := db.GetReviewedGameIds(ctx, userId, similarGameIds)
	if err != nil {
		return err
	}
	reviewed := make(map[string]bool, len(reviewedIds))
	for _, gameId := range reviewedIds {
		reviewed[gameId] = true
	}

	inc := make(map[string]int)
	for _, candidate := range similarGameIds {
		if candidate == reviewedGameId || backlog[candidate] || reviewed[candidate] {
			continue
		}
		inc[candidate]++
	}

	var unset []string
	if _, ok := user.Recommended[reviewedGameId]; ok {
		unset = append(unset, reviewedGameId)
	}

	if err := db.ApplyRecommendedDelta(ctx, userId, inc, unset); err != nil {
		return err
	}

	return Rerank(ctx, db, userId)
}

// RemoveSimilarGames reverses AddSimilarGames for a review that dropped below
// the threshold or was deleted. Counts that would fall below 1 remove the key
// entirely.
func RemoveSimilarGames(ctx context.Context, db *mongodb.DB, userId, reviewedGameId string, similarGameIds []string) error {
	user, err := db.GetUserById(ctx, userId)
	if err != nil {
		return err
	}

	pending := make(map[string]int)
	for _, candidate := range similarGameIds {
		if candidate == reviewedGameId {
			continue
		}
		pending[candidate]++
	}

	inc := make(map[string]int)
	var unset []string
	for gameId, decrements := range pending {
		count, ok := user.Recommended[gameId]
		if !ok {
			continue
		}
		if count-decrements < 1 {
			unset = append(unset, gameId)
		} else {
			inc[gameId] = -decrements
		}
	}

	if err := db.ApplyRecommendedDelta(ctx, userId, inc, unset); err != nil {
		return err
	}

	return Rerank(ctx, db, userId)
}

// OnBacklogAdd drops a game from the user's recommendations; a backlogged
// game should never also be recommended.
func OnBacklogAdd(ctx context.Context, db *mongodb.DB, userId, gameId string) error {
	user, err := db.GetUserById(ctx, userId)
	if err != nil {
		return err
	}

	if _, ok := user.Recommended[gameId]; ok {
		if err := db.ApplyRecommendedDelta(ctx, userId, nil, []string{gameId}); err != nil {
			return err
		}
	}

	return Rerank(ctx, db, userId)
}

// TopN derives the ranked game-id list from a recommendation multiset:
// count descending, game id ascending on ties, truncated to TopSize.
func TopN(recommended map[string]int) []string {
	type entry struct {
		gameId string
		count  int
	}

	entries := make([]entry, 0, len(recommended))
	for gameId, count := range recommended {
		if count < 1 {
			continue
		}
		entries = append(entries, entry{gameId: gameId, count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].gameId < entries[j].gameId
	})

	if len(entries) > TopSize {
		entries = entries[:TopSize]
	}

	top := make([]string, len(entries))
	for i, e := range entries {
		top[i] = e.gameId
	}
	return top
}

// Rerank re-derives topRecommended from the current counters. The write is
// retried with exponential backoff since it races with concurrent counter
// updates for the same user and the counters themselves are already durable.
func Rerank(ctx context.Context, db *mongodb.DB, userId string) error {
	operation := func() error {
		user, err := db.GetUserById(ctx, userId)
		if err != nil {
			if errors.Is(err, mongodb.ErrRecordNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		return db.SetTopRecommended(ctx, userId, TopN(user.Recommended))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		logx.FromContext(ctx).Error("failed to rerank recommendations", "userId", userId, "error", err)
		return err
	}
	return nil
}
