// Package users covers account creation and the backlog.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/Soobster/leaderboard-main-sub000/internal/auth"
	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NewUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Create provisions the user document and its authentication identity. The
// identity is the anchor the purge coordinator deletes last.
func Create(ctx context.Context, db *mongodb.DB, req NewUserRequest) (mongodb.UserDb, error) {
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return mongodb.UserDb{}, err
	}

	now := time.Now()
	user := mongodb.UserDb{
		Id:             primitive.NewObjectID().Hex(),
		Username:       req.Username,
		Email:          req.Email,
		Role:           "user",
		Reviews:        []string{},
		Lists:          []string{},
		Tierlists:      []string{},
		Comments:       []string{},
		Followers:      []string{},
		Following:      []string{},
		Backlog:        []string{},
		Recommended:    map[string]int{},
		TopRecommended: []string{},
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := db.InsertUser(ctx, user); err != nil {
		return mongodb.UserDb{}, err
	}

	identity := mongodb.IdentityDb{
		UserId:       user.Id,
		Username:     req.Username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	if err := db.InsertIdentity(ctx, identity); err != nil {
		// Roll the user document back so a half-created account cannot linger
		// without a login identity.
		_, _ = db.DeleteUserById(ctx, user.Id)
		return mongodb.UserDb{}, err
	}

	return user, nil
}

// Login validates credentials and returns the user document.
func Login(ctx context.Context, db *mongodb.DB, username, password string) (mongodb.UserDb, error) {
	identity, err := db.GetIdentityByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return mongodb.UserDb{}, auth.ErrInvalidCredentials
		}
		return mongodb.UserDb{}, err
	}

	if err := auth.CheckPasswordHash(identity.PasswordHash, password); err != nil {
		return mongodb.UserDb{}, auth.ErrInvalidCredentials
	}

	return db.GetUserById(ctx, identity.UserId)
}
