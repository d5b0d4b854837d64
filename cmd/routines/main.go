// The routines binary runs the scheduled jobs: today that is the daily
// "top 10 games of the past week" recomputation. It runs the job once at
// startup and then every 24 hours; exact wall-clock alignment is not
// load-bearing. With -once it runs a single pass and exits.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/Soobster/leaderboard-main-sub000/internal/cache"
	"github.com/Soobster/leaderboard-main-sub000/internal/logx"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/ranking"
	"github.com/joho/godotenv"
)

const interval = 24 * time.Hour

func main() {
	godotenv.Load()

	once := flag.Bool("once", false, "run a single pass and exit")
	flag.Parse()

	logger := logx.New()
	ctx := logx.WithLogger(context.Background(), logger)

	dbClient, err := mongodb.Connect(ctx)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer dbClient.Disconnect(ctx)

	db := mongodb.NewDB(dbClient)

	redisCache, err := cache.New(ctx, os.Getenv("REDIS_ADDR"))
	if err != nil {
		logger.Warn("redis unavailable, skipping cache invalidation", "error", err)
		redisCache = nil
	}
	defer redisCache.Close()

	runOnce(ctx, db, redisCache)
	if *once {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("weekly top scheduler started", "interval", interval.String())
	for range ticker.C {
		runOnce(ctx, db, redisCache)
	}
}

func runOnce(ctx context.Context, db *mongodb.DB, redisCache *cache.Cache) {
	logger := logx.FromContext(ctx)

	start := time.Now()
	if err := ranking.RecomputeWeeklyTop(ctx, db, start); err != nil {
		logger.Error("weekly top recomputation failed", "error", err)
		return
	}

	if err := redisCache.Invalidate(ctx, cache.WeeklyTopKey); err != nil {
		logger.Warn("failed to invalidate weekly top cache", "error", err)
	}

	logger.Info("weekly top run finished", "durationMs", time.Since(start).Milliseconds())
}
