package oauth

import (
	"context"
	"errors"
	"fmt"

	"lifeops/internal/auth/config"
	"lifeops/internal/auth/domain/model"
	"lifeops/internal/auth/domain/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ErrMissingEmail is returned when Google does not disclose an email address
var ErrMissingEmail = errors.New("google account has no email address")

// GoogleProvider implements repository.SocialProvider for Google sign-in
type GoogleProvider struct {
	config *oauth2.Config
	// userInfoEndpoint overrides the Google API base path; empty uses the default
	userInfoEndpoint string
}

var _ repository.SocialProvider = (*GoogleProvider)(nil)

// NewGoogleProvider creates the provider, or returns nil when Google is not configured
func NewGoogleProvider(cfg *config.Config) *GoogleProvider {
	if !cfg.GoogleEnabled() {
		return nil
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.GoogleRedirectURL(),
			Scopes: []string{
				"openid",
				googleoauth2.UserinfoEmailScope,
				googleoauth2.UserinfoProfileScope,
			},
		},
	}
}

func (p *GoogleProvider) ID() string { return model.ProviderGoogle }

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the authorization code for tokens and loads the user info
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*model.SocialProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange: %w", err)
	}

	opts := []option.ClientOption{option.WithTokenSource(p.config.TokenSource(ctx, token))}
	if p.userInfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(p.userInfoEndpoint))
	}
	svc, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Google OAuth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google user info: %w", err)
	}
	if info.Email == "" {
		return nil, ErrMissingEmail
	}

	profile := &model.SocialProfile{
		ProviderID:    model.ProviderGoogle,
		Subject:       info.Id,
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		EmailVerified: info.VerifiedEmail != nil && *info.VerifiedEmail,
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
		Expiry:        token.Expiry,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		profile.IDToken = idToken
	}
	if scope, ok := token.Extra("scope").(string); ok {
		profile.Scope = scope
	}
	if profile.Name == "" {
		profile.Name = info.Email
	}
	return profile, nil
}
