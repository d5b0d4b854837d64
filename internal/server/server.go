package server

import (
	"net/http"
	"os"

	"github.com/Soobster/leaderboard-main-sub000/internal/api"
	"github.com/Soobster/leaderboard-main-sub000/internal/cache"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
)

// NewServer wires the route table and middleware chain.
func NewServer(db *mongodb.DB, c *cache.Cache) http.Handler {
	tokenSecret := os.Getenv("TOKEN_SECRET")
	handlers := api.New(db, c, tokenSecret)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /", handlers.RootHandler)

	mux.HandleFunc("POST /auth/signup", handlers.SignupHandler)
	mux.HandleFunc("POST /auth/login", handlers.LoginHandler)

	mux.HandleFunc("POST /reviews", handlers.AddReviewHandler)
	mux.HandleFunc("PATCH /reviews/{id}/rating", handlers.UpdateReviewRatingHandler)
	mux.HandleFunc("DELETE /reviews/{id}", handlers.DeleteReviewHandler)

	mux.HandleFunc("POST /users/{id}/backlog", handlers.AddBacklogHandler)
	mux.HandleFunc("GET /users/{id}/recommendations", handlers.GetRecommendationsHandler)
	mux.HandleFunc("DELETE /users/{id}", handlers.DeleteAccountHandler)

	mux.HandleFunc("GET /leaderboard/weekly", handlers.GetWeeklyTopHandler)
	mux.HandleFunc("POST /jobs/weekly-top", handlers.RunWeeklyTopHandler)

	mux.HandleFunc("GET /games/search", handlers.SearchGamesHandler)

	var handler http.Handler = mux
	handler = AuthMiddleware(tokenSecret, db)(handler)
	handler = RequestIdMiddleware(handler)

	return handler
}
