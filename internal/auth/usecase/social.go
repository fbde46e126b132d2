package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"lifeops/internal/auth/domain/model"
	"lifeops/internal/auth/domain/repository"
	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/eventbus"

	"github.com/google/uuid"
)

// SocialSignIn returns the provider authorization URL and the signed state cookie
func (uc *AuthUsecase) SocialSignIn(ctx context.Context, req SocialSignInRequest) (*SocialRedirect, error) {
	provider, ok := uc.providers[req.Provider]
	if !ok {
		return nil, apperrors.NewNotFoundError("Provider")
	}
	if !uc.trustedCallback(req.CallbackURL) {
		return nil, apperrors.NewValidationError("Invalid request body", apperrors.ValidationErrors{
			{Field: "callbackURL", Message: "Callback URL is not a trusted origin"},
		})
	}

	state, err := uc.tokens.NewToken()
	if err != nil {
		return nil, err
	}
	cookie, err := uc.state.SignState(repository.OAuthState{State: state, CallbackURL: req.CallbackURL})
	if err != nil {
		return nil, fmt.Errorf("failed to sign oauth state: %w", err)
	}
	return &SocialRedirect{URL: provider.AuthCodeURL(state), StateCookie: cookie}, nil
}

// SocialCallback completes the OAuth flow: it links or creates the user,
// starts a session and reports where the browser should go next.
func (uc *AuthUsecase) SocialCallback(ctx context.Context, req SocialCallbackRequest, stateCookie string, meta RequestMeta) (*AuthResult, error) {
	provider, ok := uc.providers[req.Provider]
	if !ok {
		return nil, apperrors.NewNotFoundError("Provider")
	}

	state, err := uc.state.VerifyState(stateCookie)
	if err != nil || req.State == "" || subtle.ConstantTimeCompare([]byte(state.State), []byte(req.State)) != 1 {
		return nil, apperrors.NewAuthenticationError("Invalid OAuth state").WithCause(err)
	}
	if req.Error != "" {
		return nil, apperrors.NewAuthenticationError("Sign in was cancelled: " + req.Error)
	}
	if req.Code == "" {
		return nil, apperrors.NewValidationError("Invalid query parameters", apperrors.ValidationErrors{
			{Field: "code", Message: "Code is required"},
		})
	}

	profile, err := provider.Exchange(ctx, req.Code)
	if err != nil {
		return nil, apperrors.NewAuthenticationError("Failed to sign in with " + provider.ID()).WithCause(err)
	}
	profile.Email = normalizeEmail(profile.Email)

	user, err := uc.linkSocialAccount(ctx, profile, meta)
	if err != nil {
		return nil, err
	}

	result, err := uc.startSession(ctx, user, meta, true, profile.ProviderID)
	if err != nil {
		return nil, err
	}
	result.RedirectURL = uc.resolveCallback(state.CallbackURL)
	return result, nil
}

// linkSocialAccount finds the user behind profile, linking or creating accounts as needed
func (uc *AuthUsecase) linkSocialAccount(ctx context.Context, profile *model.SocialProfile, meta RequestMeta) (*model.User, error) {
	now := uc.now().UTC()

	account, err := uc.repo.GetAccount(ctx, profile.ProviderID, profile.Subject)
	switch {
	case err == nil:
		applyTokens(account, profile)
		if err := uc.repo.UpdateAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to update account tokens: %w", err)
		}
		user, err := uc.repo.GetUserByID(ctx, account.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get linked user: %w", err)
		}
		return user, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account = &model.Account{
		ID:         uuid.NewString(),
		ProviderID: profile.ProviderID,
		AccountID:  profile.Subject,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applyTokens(account, profile)

	existing, err := uc.repo.GetUserByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		if !profile.EmailVerified {
			return nil, apperrors.NewConflictError("An account with this email already exists")
		}
		account.UserID = existing.ID
		if err := uc.repo.CreateAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to link account: %w", err)
		}
		return existing, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if err := uc.checkPolicy(ctx, repository.SignupSubject{Email: profile.Email, Name: profile.Name, Provider: profile.ProviderID}); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:            uuid.NewString(),
		Email:         profile.Email,
		Name:          profile.Name,
		EmailVerified: profile.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if profile.Picture != "" {
		picture := profile.Picture
		user.Image = &picture
	}
	if err := uc.repo.CreateUserWithAccount(ctx, user, account); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	uc.publish(ctx, eventbus.EventTypeUserSignedUp, user.ID, "", meta, map[string]string{"provider": profile.ProviderID})
	return user, nil
}

func applyTokens(account *model.Account, profile *model.SocialProfile) {
	account.AccessToken = optional(profile.AccessToken)
	if profile.RefreshToken != "" {
		account.RefreshToken = optional(profile.RefreshToken)
	}
	account.IDToken = optional(profile.IDToken)
	account.Scope = optional(profile.Scope)
	if !profile.Expiry.IsZero() {
		expiry := profile.Expiry.UTC()
		account.AccessTokenExpiresAt = &expiry
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// trustedCallback accepts empty, same-site relative paths and absolute URLs on a trusted origin
func (uc *AuthUsecase) trustedCallback(raw string) bool {
	if raw == "" {
		return true
	}
	if strings.HasPrefix(raw, "/") {
		return !strings.HasPrefix(raw, "//") && !strings.HasPrefix(raw, "/\\")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	origin := u.Scheme + "://" + u.Host
	for _, trusted := range uc.config.TrustedOrigins {
		if strings.EqualFold(origin, trusted) {
			return true
		}
	}
	return false
}

// resolveCallback turns the stored callback into an absolute URL on the frontend
func (uc *AuthUsecase) resolveCallback(raw string) string {
	switch {
	case raw == "":
		return uc.config.FrontendURL
	case strings.HasPrefix(raw, "/"):
		return strings.TrimRight(uc.config.FrontendURL, "/") + raw
	default:
		return raw
	}
}
