package api

type ErrorResponse struct {
	StatusCode   int    `json:"statusCode"`
	ErrorMessage string `json:"error"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Id          string `json:"id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

type BacklogAddRequest struct {
	GameId string `json:"gameId" validate:"required"`
}

type DeleteReviewRequest struct {
	SimilarGameIds []string `json:"similarGameIds"`
}

type WeeklyTopResponse struct {
	Top10 []string `json:"top10"`
}

type RecommendationsResponse struct {
	TopRecommended []string `json:"topRecommended"`
}

// PublicPaths lists the endpoints the auth middleware lets through without a
// token.
var PublicPaths = map[string]bool{
	"POST /auth/signup":       true,
	"POST /auth/login":        true,
	"GET /":                   true,
	"GET /leaderboard/weekly": true,
	"GET /games/search":       true,
}
