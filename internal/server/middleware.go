package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/Soobster/leaderboard-main-sub000/internal/api"
	"github.com/Soobster/leaderboard-main-sub000/internal/auth"
	"github.com/Soobster/leaderboard-main-sub000/internal/logx"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
)

////////////////////////////////////////////////////////////////////////////
//  LOGGER MIDDLEWARE
////////////////////////////////////////////////////////////////////////////

// Creates a unique 5-character identifier
func generateRequestId() string {
	bytes := make([]byte, 3) // 3 bytes = 6 hex chars, we'll take first 5
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:5]
}

// responseRecorder wraps http.ResponseWriter to capture status code
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rr *responseRecorder) WriteHeader(statusCode int) {
	rr.statusCode = statusCode
	rr.ResponseWriter.WriteHeader(statusCode)
}

// RequestIdMiddleware tags every request with a short id, stores a logger
// carrying the id in the context, and logs the request's start and outcome.
// Handlers retrieve the logger with logx.FromContext(r.Context()).
func RequestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := generateRequestId()
		startTime := time.Now()

		logger := logx.FromContext(r.Context()).With(
			"requestId", requestId,
			"method", r.Method,
			"path", r.URL.Path,
		)

		logger.Info("request received")

		ctx := logx.WithLogger(r.Context(), logger)
		r = r.WithContext(ctx)

		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		logger.Info("request completed",
			"durationMs", time.Since(startTime).Milliseconds(),
			"status", recorder.statusCode)
	})
}

////////////////////////////////////////////////////////////////////////////
//  AUTHENTICATION MIDDLEWARE
////////////////////////////////////////////////////////////////////////////

func AuthMiddleware(tokenSecret string, db *mongodb.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			// Skip authentication for public endpoints
			if api.PublicPaths[r.Method+" "+r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			// Extract token
			tokenString, err := auth.GetBearerToken(r.Header)
			if err != nil {
				if auth.ErrorsMap[err] {
					api.RespondWithUnauthorized(w, err)
					return
				}
				http.Error(w, "Missing or invalid token", http.StatusUnauthorized)
				return
			}

			// Validate token
			userId, err := auth.ValidateJWT(tokenString, tokenSecret)
			if err != nil {
				if auth.ErrorsMap[err] {
					api.RespondWithUnauthorized(w, err)
					return
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userDb, err := db.GetUserById(r.Context(), userId)
			if err == mongodb.ErrRecordNotFound || !userDb.IsActive {
				http.Error(w, "Invalid or inactive user", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			// Put the user into context
			ctx := auth.WithUser(r.Context(), userDb)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
