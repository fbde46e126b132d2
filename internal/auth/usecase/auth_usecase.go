package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lifeops/internal/auth/authctx"
	"lifeops/internal/auth/config"
	"lifeops/internal/auth/domain/model"
	"lifeops/internal/auth/domain/repository"
	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/eventbus"
	"lifeops/internal/shared/logger"

	"github.com/google/uuid"
)

const eventSource = "auth"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPolicyRejected  = errors.New("sign-up rejected by policy")
)

func errInvalidCredentials() error {
	return apperrors.NewAuthenticationError("Invalid email or password")
}

func errSignupForbidden() *apperrors.AppError {
	return apperrors.NewForbiddenError("Sign up is not allowed for this account")
}

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	SignUpEmail(ctx context.Context, req SignUpRequest, meta RequestMeta) (*AuthResult, error)
	SignInEmail(ctx context.Context, req SignInRequest, meta RequestMeta) (*AuthResult, error)
	SignOut(ctx context.Context, sessionToken string, meta RequestMeta) error
	GetSession(ctx context.Context, sessionToken, cacheToken string) (*SessionResult, error)
	ChangePassword(ctx context.Context, identity authctx.Identity, req ChangePasswordRequest, meta RequestMeta) (*model.User, error)
	SocialSignIn(ctx context.Context, req SocialSignInRequest) (*SocialRedirect, error)
	SocialCallback(ctx context.Context, req SocialCallbackRequest, stateCookie string, meta RequestMeta) (*AuthResult, error)
}

// AuthResult is returned by every flow that creates a session
type AuthResult struct {
	Token      string
	User       *model.User
	Session    *model.Session
	CacheToken string
	// Remember is false when the session cookie should end with the browser session
	Remember bool
	// RedirectURL is set by flows that finish with a browser redirect
	RedirectURL string
}

// SessionResult is the outcome of resolving a session token
type SessionResult struct {
	Identity authctx.Identity
	Token    string
	// CacheToken is set when the cache cookie must be rewritten
	CacheToken string
	// Refreshed is set when the session expiry moved and the session cookie must be rewritten
	Refreshed bool
}

// SocialRedirect starts an OAuth flow
type SocialRedirect struct {
	URL         string
	StateCookie string
}

// Dependencies groups the collaborators of AuthUsecase
type Dependencies struct {
	Repo      repository.AuthRepository
	Hasher    repository.PasswordHasher
	Tokens    repository.TokenGenerator
	Cache     repository.SessionCache
	State     repository.StateSigner
	Policy    repository.SignupPolicy
	Providers []repository.SocialProvider
	Events    eventbus.Publisher
	Logger    logger.Logger
	// Clock defaults to time.Now
	Clock func() time.Time
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	repo      repository.AuthRepository
	hasher    repository.PasswordHasher
	tokens    repository.TokenGenerator
	cache     repository.SessionCache
	state     repository.StateSigner
	policy    repository.SignupPolicy
	providers map[string]repository.SocialProvider
	events    eventbus.Publisher
	log       logger.Logger
	config    *config.Config
	now       func() time.Time
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(cfg *config.Config, deps Dependencies) *AuthUsecase {
	uc := &AuthUsecase{
		repo:      deps.Repo,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		cache:     deps.Cache,
		state:     deps.State,
		policy:    deps.Policy,
		providers: make(map[string]repository.SocialProvider, len(deps.Providers)),
		events:    deps.Events,
		log:       deps.Logger,
		config:    cfg,
		now:       time.Now,
	}
	for _, p := range deps.Providers {
		if p != nil {
			uc.providers[p.ID()] = p
		}
	}
	if uc.policy == nil {
		uc.policy = allowAll{}
	}
	if uc.events == nil {
		uc.events = nopPublisher{}
	}
	if uc.log == nil {
		uc.log = logger.NewNop()
	}
	if deps.Clock != nil {
		uc.now = deps.Clock
	}
	uc.log = uc.log.WithComponent("auth")
	return uc
}

// SignUpEmail creates a user with a credential account and signs them in
func (uc *AuthUsecase) SignUpEmail(ctx context.Context, req SignUpRequest, meta RequestMeta) (*AuthResult, error) {
	if err := uc.checkPolicy(ctx, repository.SignupSubject{Email: req.Email, Name: req.Name, Provider: model.ProviderCredential}); err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("User already exists")
	}

	hash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := uc.now().UTC()
	user := &model.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Name:      req.Name,
		Image:     req.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := &model.Account{
		ID:         uuid.NewString(),
		ProviderID: model.ProviderCredential,
		AccountID:  user.ID,
		Password:   &hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.CreateUserWithAccount(ctx, user, account); err != nil {
		if dbErr, ok := apperrors.AsDatabaseError(err); ok && dbErr.Kind == apperrors.DatabaseErrorUniqueViolation {
			return nil, apperrors.NewConflictError("User already exists").WithCause(err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	uc.publish(ctx, eventbus.EventTypeUserSignedUp, user.ID, "", meta, map[string]string{"provider": model.ProviderCredential})

	return uc.startSession(ctx, user, meta, true, model.ProviderCredential)
}

// SignInEmail verifies the credentials and creates a session
func (uc *AuthUsecase) SignInEmail(ctx context.Context, req SignInRequest, meta RequestMeta) (*AuthResult, error) {
	user, err := uc.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	account, err := uc.repo.GetUserAccount(ctx, user.ID, model.ProviderCredential)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, fmt.Errorf("failed to get credential account: %w", err)
	}
	if account.Password == nil || !uc.hasher.Verify(*account.Password, req.Password) {
		return nil, errInvalidCredentials()
	}

	return uc.startSession(ctx, user, meta, req.remember(), model.ProviderCredential)
}

// SignOut deletes the session identified by sessionToken, if any
func (uc *AuthUsecase) SignOut(ctx context.Context, sessionToken string, meta RequestMeta) error {
	if sessionToken == "" {
		return nil
	}
	session, err := uc.repo.GetSessionByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get session: %w", err)
	}
	if err := uc.repo.DeleteSession(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	uc.publish(ctx, eventbus.EventTypeUserSignedOut, session.UserID, session.ID, meta, nil)
	return nil
}

// GetSession resolves a session token. A cache token bound to the same
// session short-circuits the database; otherwise the session is loaded,
// deleted when expired and its expiry pushed forward once updateAge has
// passed since the last refresh.
func (uc *AuthUsecase) GetSession(ctx context.Context, sessionToken, cacheToken string) (*SessionResult, error) {
	if sessionToken == "" {
		return nil, ErrSessionNotFound
	}
	now := uc.now()

	if cacheToken != "" {
		if identity, err := uc.cache.Decode(cacheToken, sessionToken); err == nil && identity.Session.ExpiresAt.After(now) {
			return &SessionResult{Identity: *identity, Token: sessionToken}, nil
		}
	}

	session, err := uc.repo.GetSessionByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.IsExpired(now) {
		if err := uc.repo.DeleteSession(ctx, session.ID); err != nil {
			uc.log.WithContext(ctx).Warnf("failed to delete expired session %s: %v", session.ID, err)
		}
		return nil, ErrSessionNotFound
	}

	user, err := uc.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session user: %w", err)
	}

	result := &SessionResult{Token: sessionToken}
	lastRefresh := session.ExpiresAt.Add(-uc.config.ExpiresIn)
	if !lastRefresh.Add(uc.config.UpdateAge).After(now) {
		expiresAt := now.Add(uc.config.ExpiresIn).UTC()
		if err := uc.repo.ExtendSession(ctx, session.ID, expiresAt); err != nil {
			return nil, fmt.Errorf("failed to refresh session: %w", err)
		}
		session.ExpiresAt = expiresAt
		result.Refreshed = true
	}

	result.Identity = authctx.NewIdentity(user, session)
	result.CacheToken = uc.encodeCache(ctx, result.Identity, sessionToken)
	return result, nil
}

// ChangePassword replaces the caller's password after verifying the current one
func (uc *AuthUsecase) ChangePassword(ctx context.Context, identity authctx.Identity, req ChangePasswordRequest, meta RequestMeta) (*model.User, error) {
	userID := identity.User.ID
	account, err := uc.repo.GetUserAccount(ctx, userID, model.ProviderCredential)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get credential account: %w", err)
	}
	if account == nil || account.Password == nil || !uc.hasher.Verify(*account.Password, req.CurrentPassword) {
		return nil, apperrors.NewValidationError("Invalid password", apperrors.ValidationErrors{
			{Field: "currentPassword", Message: "Current password is incorrect"},
		})
	}

	hash, err := uc.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account.Password = &hash
	if err := uc.repo.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	metadata := map[string]string{"revokeOtherSessions": "false"}
	if req.RevokeOtherSessions {
		if _, err := uc.repo.DeleteOtherSessions(ctx, userID, identity.Session.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke other sessions: %w", err)
		}
		metadata["revokeOtherSessions"] = "true"
	}
	uc.publish(ctx, eventbus.EventTypePasswordChanged, userID, identity.Session.ID, meta, metadata)

	user, err := uc.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// startSession issues a new session for user
func (uc *AuthUsecase) startSession(ctx context.Context, user *model.User, meta RequestMeta, remember bool, provider string) (*AuthResult, error) {
	token, err := uc.tokens.NewToken()
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     token,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		ExpiresAt: now.Add(uc.config.ExpiresIn),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	uc.publish(ctx, eventbus.EventTypeUserSignedIn, user.ID, session.ID, meta, map[string]string{"provider": provider})

	return &AuthResult{
		Token:      token,
		User:       user,
		Session:    session,
		CacheToken: uc.encodeCache(ctx, authctx.NewIdentity(user, session), token),
		Remember:   remember,
	}, nil
}

// encodeCache signs the cache cookie; a failure only costs the next request a database read
func (uc *AuthUsecase) encodeCache(ctx context.Context, identity authctx.Identity, token string) string {
	raw, err := uc.cache.Encode(identity, token)
	if err != nil {
		uc.log.WithContext(ctx).Warnf("failed to encode session cache: %v", err)
		return ""
	}
	return raw
}

func (uc *AuthUsecase) checkPolicy(ctx context.Context, subject repository.SignupSubject) error {
	allowed, err := uc.policy.Allow(ctx, subject)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("sign-up policy evaluation failed: %v", err)
		return errSignupForbidden().WithCause(err)
	}
	if !allowed {
		return errSignupForbidden().WithCause(ErrPolicyRejected)
	}
	return nil
}

func (uc *AuthUsecase) publish(ctx context.Context, eventType, userID, sessionID string, meta RequestMeta, metadata map[string]string) {
	uc.events.PublishAndForget(ctx, eventbus.NewAccountEvent(eventType, eventSource, eventbus.AccountEvent{
		UserID:    userID,
		SessionID: sessionID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Metadata:  metadata,
	}))
}

type allowAll struct{}

func (allowAll) Allow(context.Context, repository.SignupSubject) (bool, error) { return true, nil }

type nopPublisher struct{}

func (nopPublisher) PublishAndForget(context.Context, eventbus.Event) {}

// Ensure AuthUsecase implements AuthUsecaseInterface
var _ AuthUsecaseInterface = (*AuthUsecase)(nil)
