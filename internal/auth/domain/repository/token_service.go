package repository

import (
	"context"

	"lifeops/internal/auth/authctx"
	"lifeops/internal/auth/domain/model"
)

// SessionCache signs and verifies the short-lived session snapshot cookie
type SessionCache interface {
	Encode(identity authctx.Identity, sessionToken string) (string, error)
	// Decode returns the snapshot only if it is authentic, unexpired and bound to sessionToken
	Decode(raw, sessionToken string) (*authctx.Identity, error)
}

// OAuthState is the payload of the signed OAuth state cookie
type OAuthState struct {
	State       string
	CallbackURL string
}

// StateSigner signs and verifies the OAuth state cookie
type StateSigner interface {
	SignState(state OAuthState) (string, error)
	VerifyState(raw string) (*OAuthState, error)
}

// TokenGenerator creates opaque session tokens
type TokenGenerator interface {
	NewToken() (string, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// SocialProvider performs the OAuth authorization-code flow with one provider
type SocialProvider interface {
	ID() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*model.SocialProfile, error)
}

// SignupSubject is the input of a sign-up policy
type SignupSubject struct {
	Email    string
	Name     string
	Provider string
}

// SignupPolicy decides whether a new account may be created
type SignupPolicy interface {
	Allow(ctx context.Context, subject SignupSubject) (bool, error)
}
