package config

import (
	"errors"
	"strings"
	"time"

	shared "lifeops/internal/shared/config"
)

// Cookie names
const (
	SessionCookieName = "lifeops.session_token"
	CacheCookieName   = "lifeops.session_data"
	StateCookieName   = "lifeops.oauth_state"
)

// Config holds all configuration for the auth module.
type Config struct {
	// Signing
	Secret  string
	BaseURL string

	// Browser client
	FrontendURL    string
	TrustedOrigins []string

	// Session policy
	ExpiresIn   time.Duration
	UpdateAge   time.Duration
	CacheMaxAge time.Duration
	StateMaxAge time.Duration

	// Google
	GoogleClientID     string
	GoogleClientSecret string

	// Sign-up policy as a CEL expression; empty allows everyone
	SignupPolicy string

	// Rate limiting of sign-in and sign-up
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Cookie Configuration
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite string // "Lax", "Strict", "None"
}

// FromShared derives the auth module configuration from the process configuration.
func FromShared(cfg *shared.Config) *Config {
	return &Config{
		Secret:             cfg.AuthSecret,
		BaseURL:            strings.TrimRight(cfg.AuthBaseURL, "/"),
		FrontendURL:        cfg.FrontendURL,
		TrustedOrigins:     cfg.TrustedOrigins(),
		ExpiresIn:          cfg.SessionExpiresIn,
		UpdateAge:          cfg.SessionUpdateAge,
		CacheMaxAge:        cfg.SessionCacheMaxAge,
		StateMaxAge:        10 * time.Minute,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		SignupPolicy:       cfg.SignupPolicy,
		RateLimitMax:       cfg.RateLimitMax,
		RateLimitWindow:    cfg.RateLimitWindow,
		CookiePath:         "/",
		CookieSecure:       cfg.IsProduction(),
		CookieHTTPOnly:     true,
		CookieSameSite:     "Lax",
	}
}

// Validate checks the invariants the auth module relies on.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("auth secret cannot be empty")
	}
	if c.ExpiresIn <= 0 {
		return errors.New("session expiry must be positive")
	}
	if c.UpdateAge <= 0 || c.UpdateAge > c.ExpiresIn {
		return errors.New("session update age must be positive and not exceed the session expiry")
	}
	if c.CacheMaxAge <= 0 {
		return errors.New("session cache max age must be positive")
	}
	if c.StateMaxAge <= 0 {
		return errors.New("oauth state max age must be positive")
	}

	if c.CookieSameSite == "" {
		c.CookieSameSite = "Lax"
	}
	c.CookieSameSite = strings.ToUpper(c.CookieSameSite[:1]) + strings.ToLower(c.CookieSameSite[1:])
	if !(c.CookieSameSite == "Lax" || c.CookieSameSite == "Strict" || c.CookieSameSite == "None") {
		return errors.New("cookie same site must be one of 'Lax', 'Strict', or 'None'")
	}
	return nil
}

// GoogleEnabled reports whether both Google credentials are set
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// GoogleRedirectURL is the OAuth callback registered with Google
func (c *Config) GoogleRedirectURL() string {
	return c.BaseURL + "/api/auth/callback/google"
}
