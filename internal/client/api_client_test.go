package client

import (
	"context"
	"net"
	"testing"
	"time"

	"lifeops/internal/shared/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{DisableStartupMessage: true})
}

func TestAPIClient_SignInKeepsToken(t *testing.T) {
	app := newTestApp()
	app.Post("/api/auth/sign-in/email", func(c *fiber.Ctx) error {
		var body map[string]string
		if err := c.BodyParser(&body); err != nil {
			return err
		}
		if body["email"] != "ada@example.com" || body["password"] != "supersecret" {
			return response.Error(c, fiber.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid email or password", nil)
		}
		return response.Success(c, fiber.Map{
			"redirect": false,
			"token":    "tok-123",
			"user":     fiber.Map{"id": "u1", "email": "ada@example.com", "name": "Ada Lovelace"},
		}, "")
	})
	app.Get("/api/users/me", func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "Bearer tok-123" {
			return response.Error(c, fiber.StatusUnauthorized, "AUTHENTICATION_ERROR", "Authentication required", nil)
		}
		return response.Success(c, fiber.Map{"id": "u1", "email": "ada@example.com", "name": "Ada Lovelace"}, "User profile retrieved")
	})

	api := NewAPIClient(serve(t, app) + "/")
	ctx := context.Background()

	result, err := api.SignIn(ctx, "ada@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", result.Token)
	assert.Equal(t, "Ada", result.User.FirstName())
	assert.Equal(t, "tok-123", api.Token())

	user, err := api.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	app := newTestApp()
	app.Patch("/api/users/me", func(c *fiber.Ctx) error {
		return response.Error(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body",
			[]fiber.Map{{"field": "name", "message": "name must be at least 2 characters"}})
	})

	api := NewAPIClient(serve(t, app))
	name := "A"
	_, err := api.UpdateProfile(context.Background(), ProfileUpdate{Name: &name})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, fiber.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Equal(t, "Invalid request body", apiErr.Message)
	require.Len(t, apiErr.FieldErrors(), 1)
	assert.Equal(t, "name", apiErr.FieldErrors()[0].Field)
	assert.True(t, IsStatus(err, fiber.StatusBadRequest))
}

func TestAPIClient_NonEnvelopeError(t *testing.T) {
	app := newTestApp()
	app.Get("/api/users/me", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusBadGateway).SendString("upstream down")
	})

	_, err := NewAPIClient(serve(t, app)).GetProfile(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, fiber.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "HTTP_ERROR", apiErr.Code)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.Nil(t, apiErr.FieldErrors())
}

func TestAPIClient_GetSessionSignedOut(t *testing.T) {
	app := newTestApp()
	app.Get("/api/auth/get-session", func(c *fiber.Ctx) error {
		return response.Success(c, nil, "")
	})

	data, err := NewAPIClient(serve(t, app)).GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestAPIClient_SessionsAndRevocation(t *testing.T) {
	revoked := make(chan string, 2)
	app := newTestApp()
	app.Get("/api/users/me/sessions", func(c *fiber.Ctx) error {
		return response.Success(c, []fiber.Map{
			{"id": "s1", "userAgent": "cli", "isCurrent": true},
			{"id": "s2", "userAgent": "browser", "isCurrent": false},
		}, "Sessions retrieved")
	})
	app.Delete("/api/users/me/sessions/:sessionId", func(c *fiber.Ctx) error {
		revoked <- c.Params("sessionId")
		return response.NoContent(c)
	})
	app.Delete("/api/users/me/sessions", func(c *fiber.Ctx) error {
		revoked <- "others"
		return response.Success(c, nil, "All other sessions have been terminated")
	})

	api := NewAPIClient(serve(t, app))
	ctx := context.Background()

	sessions, err := api.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].IsCurrent)

	require.NoError(t, api.RevokeSession(ctx, "s2"))
	require.NoError(t, api.RevokeOtherSessions(ctx))
	assert.Equal(t, "s2", <-revoked)
	assert.Equal(t, "others", <-revoked)
}

func TestAPIClient_ListActivity(t *testing.T) {
	app := newTestApp()
	app.Get("/api/users/me/activity", func(c *fiber.Ctx) error {
		assert.Equal(t, "2", c.Query("page"))
		assert.Equal(t, "10", c.Query("limit"))
		return response.Paginated(c, []fiber.Map{{"id": "e1", "type": "user.signed_in"}},
			response.PageRequest{Page: 2, Limit: 10, Total: 25}, "Activity retrieved")
	})

	page, err := NewAPIClient(serve(t, app)).ListActivity(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "user.signed_in", page.Events[0].Type)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
}

func TestAPIClient_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAPIClient("http://127.0.0.1:1").GetProfile(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAPIClient_Unreachable(t *testing.T) {
	api := NewAPIClient("http://127.0.0.1:1")
	api.SetTimeout(500 * time.Millisecond)

	_, err := api.GetProfile(context.Background())
	require.Error(t, err)
	assert.False(t, IsStatus(err, fiber.StatusUnauthorized))
}

func TestAPIClient_EventsURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/api/users/me/events"},
		{"https://api.example.com/", "wss://api.example.com/api/users/me/events"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := NewAPIClient(tt.base).EventsURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
