package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/Soobster/leaderboard-main-sub000/internal/auth"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.NoError(t, auth.CheckPasswordHash(hash, "correct horse battery staple"))
	require.Error(t, auth.CheckPasswordHash(hash, "wrong password"))
}

func TestJWTRoundtrip(t *testing.T) {
	token, err := auth.MakeJWT("u1", "secret", time.Hour)
	require.NoError(t, err)

	subject, err := auth.ValidateJWT(token, "secret")
	require.NoError(t, err)
	require.Equal(t, "u1", subject)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := auth.MakeJWT("u1", "secret", time.Hour)
	require.NoError(t, err)

	_, err = auth.ValidateJWT(token, "other-secret")
	require.Error(t, err)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	token, err := auth.MakeJWT("u1", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateJWT(token, "secret")
	require.Error(t, err)
}

func TestGetBearerToken(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer abc123")

	token, err := auth.GetBearerToken(headers)
	require.NoError(t, err)
	require.Equal(t, "abc123", token)
}

func TestGetBearerTokenMissingHeader(t *testing.T) {
	_, err := auth.GetBearerToken(http.Header{})
	require.ErrorIs(t, err, auth.ErrMissingAuthHeader)
}

func TestGetBearerTokenMalformed(t *testing.T) {
	for _, value := range []string{"abc123", "Basic abc123", "Bearer "} {
		headers := http.Header{}
		headers.Set("Authorization", value)

		_, err := auth.GetBearerToken(headers)
		require.ErrorIs(t, err, auth.ErrMalformedAuthHeader, value)
	}
}
