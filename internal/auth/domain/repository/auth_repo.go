package repository

import (
	"context"
	"errors"
	"time"

	"lifeops/internal/auth/domain/model"
)

// ErrNotFound is returned by reads that match no row
var ErrNotFound = errors.New("record not found")

// UserRepository persists users
type UserRepository interface {
	// CreateUserWithAccount inserts the user and its first account atomically
	CreateUserWithAccount(ctx context.Context, user *model.User, account *model.Account) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUser writes only the fields set in changes and returns the stored row
	UpdateUser(ctx context.Context, id string, changes model.UserChanges) (*model.User, error)
}

// AccountRepository persists sign-in methods
type AccountRepository interface {
	GetAccount(ctx context.Context, providerID, accountID string) (*model.Account, error)
	GetUserAccount(ctx context.Context, userID, providerID string) (*model.Account, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	UpdateAccount(ctx context.Context, account *model.Account) error
}

// SessionRepository persists sessions
type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionByToken(ctx context.Context, token string) (*model.Session, error)
	ExtendSession(ctx context.Context, id string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	// ListUserSessions returns the user's sessions newest first
	ListUserSessions(ctx context.Context, userID string) ([]*model.Session, error)
	// DeleteUserSession deletes the session only if it belongs to userID
	DeleteUserSession(ctx context.Context, userID, sessionID string) (bool, error)
	// DeleteOtherSessions deletes every session of userID except keepID in one statement
	DeleteOtherSessions(ctx context.Context, userID, keepID string) (int64, error)
}

// AuthRepository is the full persistence surface of the auth provider
type AuthRepository interface {
	UserRepository
	AccountRepository
	SessionRepository
}
