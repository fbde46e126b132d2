// Package authctx carries the authenticated identity on a request context.
package authctx

import (
	"context"
	"time"

	"lifeops/internal/auth/domain/model"
	"lifeops/internal/shared/contextkeys"
	"lifeops/internal/shared/utils"
)

// AuthUser is the normalized user attached to an authenticated request
type AuthUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"emailVerified"`
}

// AuthSession is the normalized session attached to an authenticated request
type AuthSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity pairs the authenticated user with the session that proved it
type Identity struct {
	User    AuthUser    `json:"user"`
	Session AuthSession `json:"session"`
}

// NewIdentity projects persisted rows onto an Identity
func NewIdentity(user *model.User, session *model.Session) Identity {
	return Identity{
		User: AuthUser{
			ID:            user.ID,
			Email:         user.Email,
			Name:          user.Name,
			EmailVerified: user.EmailVerified,
		},
		Session: AuthSession{
			ID:        session.ID,
			UserID:    session.UserID,
			ExpiresAt: session.ExpiresAt,
		},
	}
}

// WithIdentity returns a copy of ctx that carries id. The user id is also
// stored under its own key so request logs pick it up.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, contextkeys.IdentityKey, id)
	return utils.WithUserID(ctx, id.User.ID)
}

// IdentityFrom returns the identity stored by WithIdentity
func IdentityFrom(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(contextkeys.IdentityKey).(Identity)
	return id, ok
}
