package http

import (
	"net/url"
	"strings"

	"lifeops/internal/auth/config"
	"lifeops/internal/auth/usecase"
	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/httpx"
	"lifeops/internal/shared/logger"
	"lifeops/internal/shared/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	config  *config.Config
	cookies cookieWriter
	limiter fiber.Storage
	log     logger.Logger
}

// NewAuthHTTPHandler creates a new authentication HTTP handler. limiterStorage
// may be nil to keep rate-limit counters in memory.
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, cfg *config.Config, limiterStorage fiber.Storage, log logger.Logger) *AuthHTTPHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHTTPHandler{
		usecase: uc,
		config:  cfg,
		cookies: cookieWriter{cfg: cfg},
		limiter: limiterStorage,
		log:     log.WithComponent("auth-http"),
	}
}

// SetupAuthRoutesWithMiddleware sets up the /api/auth routes
func (h *AuthHTTPHandler) SetupAuthRoutesWithMiddleware(router fiber.Router, middleware *AuthMiddleware) {
	limit := httpx.RateLimiter(httpx.RateLimitConfig{
		Max:     h.config.RateLimitMax,
		Window:  h.config.RateLimitWindow,
		Storage: h.limiter,
	})

	router.Post("/sign-up/email", limit, httpx.ValidateBody[usecase.SignUpRequest](), h.SignUpEmail)
	router.Post("/sign-in/email", limit, httpx.ValidateBody[usecase.SignInRequest](), h.SignInEmail)
	router.Post("/sign-in/social", limit, httpx.ValidateBody[usecase.SocialSignInRequest](), h.SocialSignIn)
	router.Get("/callback/:provider", h.SocialCallback)
	router.Post("/sign-out", h.SignOut)
	router.Get("/get-session", middleware.OptionalAuth(), h.GetSession)
	router.Get("/ok", h.OK)

	// Protected routes (authentication required)
	router.Post("/change-password", middleware.RequireAuth(), httpx.ValidateBody[usecase.ChangePasswordRequest](), h.ChangePassword)
}

// SignUpEmail handles credential registration
func (h *AuthHTTPHandler) SignUpEmail(c *fiber.Ctx) error {
	req := httpx.Body[usecase.SignUpRequest](c)
	result, err := h.usecase.SignUpEmail(c.UserContext(), *req, RequestMeta(c))
	if err != nil {
		return err
	}

	h.setSessionCookies(c, result)
	return response.Success(c, fiber.Map{
		"token": result.Token,
		"user":  result.User,
	}, "")
}

// SignInEmail handles credential login
func (h *AuthHTTPHandler) SignInEmail(c *fiber.Ctx) error {
	req := httpx.Body[usecase.SignInRequest](c)
	result, err := h.usecase.SignInEmail(c.UserContext(), *req, RequestMeta(c))
	if err != nil {
		return err
	}

	h.setSessionCookies(c, result)
	return response.Success(c, fiber.Map{
		"redirect": false,
		"token":    result.Token,
		"user":     result.User,
	}, "")
}

// SignOut deletes the current session and expires the cookies
func (h *AuthHTTPHandler) SignOut(c *fiber.Ctx) error {
	token, _ := extractToken(c)
	if err := h.usecase.SignOut(c.UserContext(), token, RequestMeta(c)); err != nil {
		return err
	}

	h.cookies.clearSession(c)
	return response.Success(c, fiber.Map{"success": true}, "")
}

// GetSession returns the current session and user, or no data when signed out
func (h *AuthHTTPHandler) GetSession(c *fiber.Ctx) error {
	identity, err := MustIdentity(c)
	if err != nil {
		return response.Success(c, nil, "")
	}
	return response.Success(c, identity, "")
}

// ChangePassword replaces the caller's password
func (h *AuthHTTPHandler) ChangePassword(c *fiber.Ctx) error {
	identity, err := MustIdentity(c)
	if err != nil {
		return err
	}

	req := httpx.Body[usecase.ChangePasswordRequest](c)
	user, err := h.usecase.ChangePassword(c.UserContext(), identity, *req, RequestMeta(c))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.Map{"user": user}, "Password changed successfully")
}

// SocialSignIn starts an OAuth flow
func (h *AuthHTTPHandler) SocialSignIn(c *fiber.Ctx) error {
	req := httpx.Body[usecase.SocialSignInRequest](c)
	redirect, err := h.usecase.SocialSignIn(c.UserContext(), *req)
	if err != nil {
		return err
	}

	h.cookies.setState(c, redirect.StateCookie)
	return response.Success(c, fiber.Map{
		"url":      redirect.URL,
		"redirect": true,
	}, "")
}

// SocialCallback completes an OAuth flow and redirects the browser
func (h *AuthHTTPHandler) SocialCallback(c *fiber.Ctx) error {
	req := usecase.SocialCallbackRequest{
		Provider: c.Params("provider"),
		Code:     c.Query("code"),
		State:    c.Query("state"),
		Error:    c.Query("error"),
	}
	stateCookie := c.Cookies(config.StateCookieName)
	h.cookies.clear(c, config.StateCookieName)

	result, err := h.usecase.SocialCallback(c.UserContext(), req, stateCookie, RequestMeta(c))
	if err != nil {
		appErr, ok := apperrors.AsAppError(err)
		if !ok || appErr.HTTPCode >= fiber.StatusInternalServerError {
			return err
		}
		h.log.WithContext(c.UserContext()).Warnf("social sign-in failed: %v", err)
		return c.Redirect(h.errorRedirect(appErr.Code), fiber.StatusFound)
	}

	h.setSessionCookies(c, result)
	return c.Redirect(result.RedirectURL, fiber.StatusFound)
}

// OK is the auth liveness probe
func (h *AuthHTTPHandler) OK(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{"ok": true}, "")
}

// Helper methods

func (h *AuthHTTPHandler) setSessionCookies(c *fiber.Ctx, result *usecase.AuthResult) {
	h.cookies.setSession(c, result.Token, result.Session.ExpiresAt, result.Remember)
	h.cookies.setCache(c, result.CacheToken)
}

func (h *AuthHTTPHandler) errorRedirect(code string) string {
	return strings.TrimRight(h.config.FrontendURL, "/") + "/login?error=" + url.QueryEscape(strings.ToLower(code))
}
