package http

import (
	"errors"
	"strings"

	"lifeops/internal/auth/authctx"
	"lifeops/internal/auth/config"
	"lifeops/internal/auth/usecase"
	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase usecase.AuthUsecaseInterface
	cookies cookieWriter
	log     logger.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, cfg *config.Config, log logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthMiddleware{
		usecase: uc,
		cookies: cookieWriter{cfg: cfg},
		log:     log.WithComponent("auth-middleware"),
	}
}

// RequireAuth rejects requests without a valid session
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := m.authenticate(c); err != nil {
			if errors.Is(err, usecase.ErrSessionNotFound) {
				return apperrors.NewAuthenticationError("Invalid or expired session")
			}
			return err
		}
		return c.Next()
	}
}

// OptionalAuth attaches the identity when there is one and never fails
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := m.authenticate(c); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
			m.log.WithContext(c.UserContext()).Warnf("optional session lookup failed: %v", err)
		}
		return c.Next()
	}
}

// authenticate resolves the session and stores the identity on the user context
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) error {
	token, fromCookie := extractToken(c)
	if token == "" {
		return usecase.ErrSessionNotFound
	}

	result, err := m.usecase.GetSession(c.UserContext(), token, c.Cookies(config.CacheCookieName))
	if err != nil {
		if fromCookie && errors.Is(err, usecase.ErrSessionNotFound) {
			m.cookies.clearSession(c)
		}
		return err
	}

	if fromCookie {
		if result.Refreshed {
			m.cookies.setSession(c, token, result.Identity.Session.ExpiresAt, true)
		}
		m.cookies.setCache(c, result.CacheToken)
	}

	c.SetUserContext(authctx.WithIdentity(c.UserContext(), result.Identity))
	return nil
}

// extractToken reads the session cookie first, then a bearer token
func extractToken(c *fiber.Ctx) (string, bool) {
	if token := c.Cookies(config.SessionCookieName); token != "" {
		return token, true
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), false
}

// MustIdentity returns the identity stored by RequireAuth
func MustIdentity(c *fiber.Ctx) (authctx.Identity, error) {
	identity, ok := authctx.IdentityFrom(c.UserContext())
	if !ok {
		return authctx.Identity{}, apperrors.NewAuthenticationError("Invalid or expired session")
	}
	return identity, nil
}

// RequestMeta describes the client of the current request
func RequestMeta(c *fiber.Ctx) usecase.RequestMeta {
	return usecase.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
