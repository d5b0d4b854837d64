package auth

import "errors"

var (
	ErrMissingAuthHeader   = errors.New("missing authorization header")
	ErrMalformedAuthHeader = errors.New("malformed authorization header")
	ErrTokenSigningMethod  = errors.New("unexpected token signing method")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenWithNoSubject  = errors.New("token has no subject")
	ErrInvalidCredentials  = errors.New("invalid username or password")
)

// ErrorsMap lets middleware distinguish auth errors from unexpected ones.
var ErrorsMap = map[error]bool{
	ErrMissingAuthHeader:   true,
	ErrMalformedAuthHeader: true,
	ErrTokenSigningMethod:  true,
	ErrInvalidToken:        true,
	ErrTokenExpired:        true,
	ErrTokenWithNoSubject:  true,
}
