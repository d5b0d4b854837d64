package main

import (
	"context"
	"net/http"
	"os"

	"github.com/Soobster/leaderboard-main-sub000/internal/cache"
	"github.com/Soobster/leaderboard-main-sub000/internal/logx"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/Soobster/leaderboard-main-sub000/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	logger := logx.New()
	ctx := context.Background()

	dbClient, err := mongodb.Connect(ctx)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer dbClient.Disconnect(ctx)

	db := mongodb.NewDB(dbClient)

	redisCache, err := cache.New(ctx, os.Getenv("REDIS_ADDR"))
	if err != nil {
		logger.Warn("redis unavailable, running uncached", "error", err)
		redisCache = nil
	}
	defer redisCache.Close()

	handler := server.NewServer(db, redisCache)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	logger.Info("server is running", "port", port)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
