// Package purge implements cascading account deletion: the user's owned
// content, every reference to the user in other documents, the user document,
// and finally the authentication identity. Cleanup is best-effort: each task
// runs regardless of earlier failures, and the outcome of every task is
// collected into a Report instead of aborting the cascade.
package purge

import (
	"context"
	"fmt"

	"github.com/Soobster/leaderboard-main-sub000/internal/logx"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/aggregates"
	"golang.org/x/sync/errgroup"
)

// TaskResult records one cleanup task's outcome.
type TaskResult struct {
	Task  string `json:"task"`
	Error string `json:"error,omitempty"`
}

// Report is the purge summary returned to the caller and logged for
// operations. There is no automatic retry or rollback; failed tasks are an
// accepted operational risk, surfaced here rather than swallowed.
type Report struct {
	UserId  string       `json:"userId"`
	Results []TaskResult `json:"results"`
}

func (r *Report) record(ctx context.Context, task string, err error) {
	result := TaskResult{Task: task}
	if err != nil {
		result.Error = err.Error()
		logx.FromContext(ctx).Error("purge task failed", "userId", r.UserId, "task", task, "error", err)
	}
	r.Results = append(r.Results, result)
}

// Failed returns the results of tasks that reported an error.
func (r *Report) Failed() []TaskResult {
	var failed []TaskResult
	for _, result := range r.Results {
		if result.Error != "" {
			failed = append(failed, result)
		}
	}
	return failed
}

// PurgeAccount removes a user and everything that references them. The
// identity deletion is issued strictly last: it is the anchor that authorized
// the rest of the cleanup.
func PurgeAccount(ctx context.Context, db *mongodb.DB, userId string) Report {
	report := Report{UserId: userId}

	// Owned-content queries are independent; run them concurrently. A failed
	// query degrades to an empty result for the later steps and is recorded.
	var (
		ownedReviews  []mongodb.ReviewDb
		ownedLists    []string
		ownedTiers    []string
		ownedComments []string
	)

	var reviewsErr, listsErr, tiersErr, commentsErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ownedReviews, reviewsErr = db.GetReviewsByUserId(gctx, userId)
		return nil
	})
	g.Go(func() error {
		ownedLists, listsErr = db.IdsByUserId(gctx, mongodb.ListsCollection, userId)
		return nil
	})
	g.Go(func() error {
		ownedTiers, tiersErr = db.IdsByUserId(gctx, mongodb.TierlistsCollection, userId)
		return nil
	})
	g.Go(func() error {
		ownedComments, commentsErr = db.IdsByUserId(gctx, mongodb.CommentsCollection, userId)
		return nil
	})
	_ = g.Wait()

	report.record(ctx, "fetch reviews", reviewsErr)
	report.record(ctx, "fetch lists", listsErr)
	report.record(ctx, "fetch tierlists", tiersErr)
	report.record(ctx, "fetch comments", commentsErr)

	// Repair every affected game's aggregate before the reviews are deleted;
	// DetachReviews recomputes from the surviving ids only, or drops the
	// aggregate when the user was the game's sole reviewer.
	byGame := make(map[string][]string)
	for _, review := range ownedReviews {
		byGame[review.GameId] = append(byGame[review.GameId], review.Id)
	}
	for gameId, reviewIds := range byGame {
		err := aggregates.DetachReviews(ctx, db, gameId, reviewIds)
		report.record(ctx, fmt.Sprintf("repair aggregate for game %s", gameId), err)
	}

	// Owned content
	for _, collection := range []string{
		mongodb.ReviewsCollection,
		mongodb.ListsCollection,
		mongodb.TierlistsCollection,
		mongodb.CommentsCollection,
	} {
		_, err := db.DeleteByUserId(ctx, collection, userId)
		report.record(ctx, "delete owned "+collection, err)
	}

	// References to the user in everyone else's documents
	for _, collection := range []string{
		mongodb.ReviewsCollection,
		mongodb.ListsCollection,
		mongodb.TierlistsCollection,
		mongodb.CommentsCollection,
	} {
		_, err := db.StripUserVotes(ctx, collection, userId)
		report.record(ctx, "strip votes from "+collection, err)
	}

	_, err := db.StripCommentIds(ctx, ownedComments)
	report.record(ctx, "strip comment ids from reviews", err)

	_, err = db.StripUserFromFollows(ctx, userId)
	report.record(ctx, "strip follows", err)

	// The user document and, last of all, the identity.
	_, err = db.DeleteUserById(ctx, userId)
	report.record(ctx, "delete user document", err)

	_, err = db.DeleteIdentityByUserId(ctx, userId)
	report.record(ctx, "delete identity", err)

	logx.FromContext(ctx).Info("account purge finished",
		"userId", userId,
		"tasks", len(report.Results),
		"failed", len(report.Failed()),
		"lists", len(ownedLists),
		"tierlists", len(ownedTiers))

	return report
}
