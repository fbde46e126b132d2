package http

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lifeops/internal/auth/authctx"
	"lifeops/internal/auth/config"
	"lifeops/internal/auth/testutil"
	"lifeops/internal/auth/usecase"
	"lifeops/internal/shared/httpx"
	"lifeops/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMiddlewareApp(uc *MockAuthUsecase, optional bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpx.NewErrorHandler(nil, false)})
	mw := NewAuthMiddleware(uc, testutil.Config(), nil)
	gate := mw.RequireAuth()
	if optional {
		gate = mw.OptionalAuth()
	}
	app.Get("/protected", gate, func(c *fiber.Ctx) error {
		identity, ok := authctx.IdentityFrom(c.UserContext())
		if !ok {
			return c.SendString("anonymous")
		}
		userID, _ := utils.GetUserIDFromContext(c.UserContext())
		return c.SendString(identity.User.Email + "|" + userID)
	})
	return app
}

func TestRequireAuth_NoToken(t *testing.T) {
	uc := new(MockAuthUsecase)
	app := newMiddlewareApp(uc, false)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	uc.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	uc := new(MockAuthUsecase)
	app := newMiddlewareApp(uc, false)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_CookieTakesPrecedence(t *testing.T) {
	uc := new(MockAuthUsecase)
	uc.On("GetSession", mock.Anything, "cookie-token", "cache-token").
		Return(&usecase.SessionResult{Identity: testIdentity(), Token: "cookie-token"}, nil)
	app := newMiddlewareApp(uc, false)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: "cookie-token"})
	req.AddCookie(&http.Cookie{Name: config.CacheCookieName, Value: "cache-token"})
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com|user-1", string(body))
	// no cache token and no refresh: nothing to rewrite
	assert.Nil(t, findCookie(resp, config.SessionCookieName))
	uc.AssertExpectations(t)
}

func TestRequireAuth_RefreshRewritesCookies(t *testing.T) {
	uc := new(MockAuthUsecase)
	uc.On("GetSession", mock.Anything, "cookie-token", "").
		Return(&usecase.SessionResult{Identity: testIdentity(), Token: "cookie-token", CacheToken: "new-cache", Refreshed: true}, nil)
	app := newMiddlewareApp(uc, false)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: "cookie-token"})
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	session := findCookie(resp, config.SessionCookieName)
	require.NotNil(t, session)
	assert.Equal(t, "cookie-token", session.Value)
	assert.Greater(t, session.MaxAge, 0)
	cache := findCookie(resp, config.CacheCookieName)
	require.NotNil(t, cache)
	assert.Equal(t, "new-cache", cache.Value)
}

func TestRequireAuth_ExpiredCookieIsCleared(t *testing.T) {
	uc := new(MockAuthUsecase)
	uc.On("GetSession", mock.Anything, "stale", "").Return(nil, usecase.ErrSessionNotFound)
	app := newMiddlewareApp(uc, false)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: "stale"})
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	session := findCookie(resp, config.SessionCookieName)
	require.NotNil(t, session)
	assert.Empty(t, session.Value)
}

func TestRequireAuth_LookupFailure(t *testing.T) {
	uc := new(MockAuthUsecase)
	uc.On("GetSession", mock.Anything, "token", "").Return(nil, errors.New("connection refused"))
	app := newMiddlewareApp(uc, false)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestOptionalAuth_SwallowsErrors(t *testing.T) {
	uc := new(MockAuthUsecase)
	uc.On("GetSession", mock.Anything, "token", "").Return(nil, errors.New("connection refused"))
	app := newMiddlewareApp(uc, true)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", string(body))
}

func TestRequestMeta(t *testing.T) {
	tests := []struct {
		name    string
		proxies []string
		wantIP  string
	}{
		{"forwarded header is ignored by default", nil, "0.0.0.0"},
		{"trusted proxy supplies the client address", []string{"0.0.0.0"}, "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fiber.Config{}
			httpx.TrustProxies(&cfg, tt.proxies)
			app := fiber.New(cfg)
			var meta usecase.RequestMeta
			app.Get("/", func(c *fiber.Ctx) error {
				meta = RequestMeta(c)
				return nil
			})

			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			req.Header.Set("User-Agent", "lifeops-cli/1.0")
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
			_, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantIP, meta.IPAddress)
			assert.Equal(t, "lifeops-cli/1.0", meta.UserAgent)
		})
	}
}
