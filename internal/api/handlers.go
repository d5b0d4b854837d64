package api

import (
	"net/http"
	"time"

	"github.com/Soobster/leaderboard-main-sub000/internal/auth"
	"github.com/Soobster/leaderboard-main-sub000/internal/cache"
	"github.com/Soobster/leaderboard-main-sub000/internal/logx"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/Soobster/leaderboard-main-sub000/internal/rawg"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/aggregates"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/purge"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/ranking"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/reviews"
	"github.com/Soobster/leaderboard-main-sub000/internal/services/users"
)

const tokenLifetime = 24 * time.Hour

var errorStatusMap = map[error]int{
	mongodb.ErrRecordNotFound:   http.StatusNotFound,
	aggregates.ErrInvalidRating: http.StatusBadRequest,
	auth.ErrInvalidCredentials:  http.StatusUnauthorized,
	auth.ErrMissingAuthHeader:   http.StatusUnauthorized,
	auth.ErrMalformedAuthHeader: http.StatusUnauthorized,
}

type API struct {
	db          *mongodb.DB
	cache       *cache.Cache
	tokenSecret string
}

func New(db *mongodb.DB, c *cache.Cache, tokenSecret string) *API {
	return &API{db: db, cache: c, tokenSecret: tokenSecret}
}

func (a *API) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if code, ok := getErrorStatusCode(errorStatusMap, err); ok {
		respondWithError(w, code, formatErrorMessage(err))
		return
	}
	logx.FromContext(r.Context()).Error(fallback, "error", err)
	respondWithError(w, http.StatusInternalServerError, fallback)
}

func (a *API) RootHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Leaderboard API",
	})
}

////////////////////////////////////////////////////////////////////////////
//  AUTH
////////////////////////////////////////////////////////////////////////////

func (a *API) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req users.NewUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := users.Create(r.Context(), a.db, req)
	if err != nil {
		a.respondWithServiceError(w, r, err, "Failed to create user")
		return
	}

	token, err := auth.MakeJWT(user.Id, a.tokenSecret, tokenLifetime)
	if err != nil {
		a.respondWithServiceError(w, r, err, "Failed to issue token")
		return
	}

	respondWithJSON(w, http.StatusCreated, LoginResponse{
		Id:          user.Id,
		Username:    user.Username,
		AccessToken: token,
	})
}

func (a *API) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := users.Login(r.Context(), a.db, req.Username, req.Password)
	if err != nil {
		a.respondWithServiceError(w, r, err, "Failed to log in")
		return
	}

	token, err := auth.MakeJWT(user.Id, a.tokenSecret, tokenLifetime)
	if err != nil {
		a.respondWithServiceError(w, r, err, "Failed to issue token")
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{
		Id:          user.Id,
		Username:    user.Username,
		AccessToken: token,
	})
}

////////////////////////////////////////////////////////////////////////////
//  REVIEWS
////////////////////////////////////////////////////////////////////////////

func (a *API) AddReviewHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		RespondWithUnauthorized(w, auth.ErrMissingAuthHeader)
		return
	}

	var req reviews.NewReview
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserId = user.Id

	review, err := reviews.Create(r.Context(), a.db, req)
	if err != nil {
		a.respondWithServiceError(w, r, err, "Failed to create review")
		return
	}

	a.invalidateRecommendations(r, user.Id)
	respondWithJSON(w, http.StatusCreated, review)
}

func (a *API) UpdateReviewRatingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		RespondWithUnauthorized(w, auth.ErrMissingAuthHeader)
		return
	}
	reviewId := r.PathValue("id")

	existing, err := a.db.GetReviewById(r.Context(), reviewId)
	if err != nil {
		a.respondWithServiceError(w, r, err, "Failed to fetch review")
		return
	}
	if existing.UserId != user.Id {
		respondWithForbidden(w)
		return
	}

	var req reviews.RatingChange
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := reviews.ChangeRating(r.Context(), a.db, reviewId, req)
	if err != nil {
		a.respondWithServiceError(w, r, err, "Failed to update review rating")
		return
	}

	a.invalidateRecommendations(r, user.Id)
	respondWithJSON(w, http.StatusOK, review)
}

func (a *API) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		RespondWithUnauthorized(w, auth.ErrMissingAuthHeader)
		return
	}
	reviewId := r.PathValue("id")

	existing, err := a.db.GetReviewById(r.Context(), reviewId)
	if err != nil {
		a.respondWithServiceError(w, r, err, "Failed to fetch review")
		return
	}
	if existing.UserId != user.Id && user.Role != "admin" {
		respondWithForbidden(w)
		return
	}

	// Body is optional; the frontend passes the similar-games list it already
	// resolved for this review so the recommendation counters can be debited.
	var req DeleteReviewRequest
	_ = decodeAndValidate(r, &req)

	if err := reviews.Delete(r.Context(), a.db, reviewId, req.SimilarGameIds); err != nil {
		a.respondWithServiceError(w, r, err, "Failed to delete review")
		return
	}

	a.invalidateRecommendations(r, existing.UserId)
	w.WriteHeader(http.StatusNoContent)
}

////////////////////////////////////////////////////////////////////////////
//  USERS
////////////////////////////////////////////////////////////////////////////

func (a *API) AddBacklogHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		RespondWithUnauthorized(w, auth.ErrMissingAuthHeader)
		return
	}
	if r.PathValue("id") != user.Id {
		respondWithForbidden(w)
		return
	}

	var req BacklogAddRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := users.AddToBacklog(r.Context(), a.db, user.Id, req.GameId); err != nil {
		a.respondWithServiceError(w, r, err, "Failed to add game to backlog")
		return
	}

	a.invalidateRecommendations(r, user.Id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) GetRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	userId := r.PathValue("id")
	ctx := r.Context()

	cacheKey := cache.RecommendationsKey(userId)
	var cached RecommendationsResponse
	if hit, err := a.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		respondWithJSON(w, http.StatusOK, cached)
		return
	}

	user, err := a.db.GetUserById(ctx, userId)
	if err != nil {
		a.respondWithServiceError(w, r, err, "Failed to fetch user")
		return
	}

	resp := RecommendationsResponse{TopRecommended: user.TopRecommended}
	if resp.TopRecommended == nil {
		resp.TopRecommended = []string{}
	}

	if err := a.cache.SetJSON(ctx, cacheKey, resp); err != nil {
		logx.FromContext(ctx).Warn("failed to cache recommendations", "userId", userId, "error", err)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (a *API) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		RespondWithUnauthorized(w, auth.ErrMissingAuthHeader)
		return
	}
	targetId := r.PathValue("id")
	if targetId != user.Id && user.Role != "admin" {
		respondWithForbidden(w)
		return
	}

	report := purge.PurgeAccount(r.Context(), a.db, targetId)
	a.invalidateRecommendations(r, targetId)

	status := http.StatusOK
	if len(report.Failed()) > 0 {
		status = http.StatusMultiStatus
	}
	respondWithJSON(w, status, report)
}

////////////////////////////////////////////////////////////////////////////
//  LEADERBOARD
////////////////////////////////////////////////////////////////////////////

func (a *API) GetWeeklyTopHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached WeeklyTopResponse
	if hit, err := a.cache.GetJSON(ctx, cache.WeeklyTopKey, &cached); err == nil && hit {
		respondWithJSON(w, http.StatusOK, cached)
		return
	}

	top, err := a.db.GetWeeklyTop(ctx)
	if err != nil {
		if err == mongodb.ErrRecordNotFound {
			// The job has not run yet
			respondWithJSON(w, http.StatusOK, WeeklyTopResponse{Top10: []string{}})
			return
		}
		a.respondWithServiceError(w, r, err, "Failed to fetch weekly top")
		return
	}

	resp := WeeklyTopResponse{Top10: top.Top10}
	if err := a.cache.SetJSON(ctx, cache.WeeklyTopKey, resp); err != nil {
		logx.FromContext(ctx).Warn("failed to cache weekly top", "error", err)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// RunWeeklyTopHandler triggers the daily job on demand; same code path as the
// routines binary.
func (a *API) RunWeeklyTopHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user.Role != "admin" {
		respondWithForbidden(w)
		return
	}

	if err := ranking.RecomputeWeeklyTop(r.Context(), a.db, time.Now()); err != nil {
		a.respondWithServiceError(w, r, err, "Failed to recompute weekly top")
		return
	}
	if err := a.cache.Invalidate(r.Context(), cache.WeeklyTopKey); err != nil {
		logx.FromContext(r.Context()).Warn("failed to invalidate weekly top cache", "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

////////////////////////////////////////////////////////////////////////////
//  GAME SEARCH (pass-through)
////////////////////////////////////////////////////////////////////////////

func (a *API) SearchGamesHandler(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		endpoint = "games"
	}

	body, err := rawg.Fetch(endpoint, r.URL.Query().Get("query"))
	if err != nil {
		logx.FromContext(r.Context()).Error("game search proxy failed", "error", err)
		respondWithError(w, http.StatusBadGateway, "Failed to fetch from game database")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (a *API) invalidateRecommendations(r *http.Request, userId string) {
	if err := a.cache.Invalidate(r.Context(), cache.RecommendationsKey(userId)); err != nil {
		logx.FromContext(r.Context()).Warn("failed to invalidate recommendations cache",
			"userId", userId, "error", err)
	}
}
