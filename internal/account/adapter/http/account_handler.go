package http

import (
	"lifeops/internal/account/usecase"
	authhttp "lifeops/internal/auth/adapter/http"
	"lifeops/internal/shared/httpx"
	"lifeops/internal/shared/response"

	"github.com/gofiber/fiber/v2"
)

// AccountHTTPHandler serves /users/me and the session management routes
type AccountHTTPHandler struct {
	usecase usecase.AccountUsecaseInterface
}

// NewAccountHTTPHandler creates a new account handler
func NewAccountHTTPHandler(uc usecase.AccountUsecaseInterface) *AccountHTTPHandler {
	return &AccountHTTPHandler{usecase: uc}
}

// RegisterRoutes mounts the account routes on me, the authenticated /users/me group
func (h *AccountHTTPHandler) RegisterRoutes(me fiber.Router) {
	me.Get("/", h.GetProfile)
	me.Patch("/", httpx.ValidateBody[usecase.UpdateProfileRequest](), h.UpdateProfile)
	me.Get("/sessions", h.ListSessions)
	me.Delete("/sessions", h.DeleteOtherSessions)
	me.Delete("/sessions/:sessionId", httpx.ValidateParams[usecase.SessionParams](), h.DeleteSession)
}

// GetProfile returns the caller's profile
func (h *AccountHTTPHandler) GetProfile(c *fiber.Ctx) error {
	identity, err := authhttp.MustIdentity(c)
	if err != nil {
		return err
	}
	profile, err := h.usecase.GetProfile(c.UserContext(), identity.User.ID)
	if err != nil {
		return err
	}
	return response.Success(c, profile, "User profile retrieved")
}

// UpdateProfile applies the validated changes
func (h *AccountHTTPHandler) UpdateProfile(c *fiber.Ctx) error {
	identity, err := authhttp.MustIdentity(c)
	if err != nil {
		return err
	}
	req := httpx.Body[usecase.UpdateProfileRequest](c)
	profile, err := h.usecase.UpdateProfile(c.UserContext(), identity, *req, authhttp.RequestMeta(c))
	if err != nil {
		return err
	}
	return response.Success(c, profile, "Profile updated successfully")
}

// ListSessions returns the caller's sessions
func (h *AccountHTTPHandler) ListSessions(c *fiber.Ctx) error {
	identity, err := authhttp.MustIdentity(c)
	if err != nil {
		return err
	}
	sessions, err := h.usecase.ListSessions(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return response.Success(c, sessions, "Sessions retrieved")
}

// DeleteSession revokes one session; absent or foreign ids still get 204
func (h *AccountHTTPHandler) DeleteSession(c *fiber.Ctx) error {
	identity, err := authhttp.MustIdentity(c)
	if err != nil {
		return err
	}
	params := httpx.Params[usecase.SessionParams](c)
	if err := h.usecase.DeleteSession(c.UserContext(), identity, params.SessionID, authhttp.RequestMeta(c)); err != nil {
		return err
	}
	return response.NoContent(c)
}

// DeleteOtherSessions revokes every session but the current one
func (h *AccountHTTPHandler) DeleteOtherSessions(c *fiber.Ctx) error {
	identity, err := authhttp.MustIdentity(c)
	if err != nil {
		return err
	}
	if _, err := h.usecase.DeleteOtherSessions(c.UserContext(), identity, authhttp.RequestMeta(c)); err != nil {
		return err
	}
	return response.Success(c, nil, "All other sessions have been terminated")
}
