// Package client is the terminal front end of the API: a typed HTTP client
// plus the auth and UI state stores the CLI pages read from.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// DefaultTimeout bounds every request that carries no deadline
const DefaultTimeout = 15 * time.Second

const userAgent = "lifeops-cli/1.0"

// APIError is a non-2xx response, decoded from the error envelope when the
// server sent one
type APIError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// FieldErrors decodes Details as validation errors; other shapes yield nil
func (e *APIError) FieldErrors() []FieldError {
	if len(e.Details) == 0 {
		return nil
	}
	var out []FieldError
	if err := json.Unmarshal(e.Details, &out); err != nil {
		return nil
	}
	return out
}

// IsStatus reports whether err is an *APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// APIClient calls the LifeOps API with a bearer token
type APIClient struct {
	baseURL string
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// NewAPIClient returns a client for the API rooted at baseURL
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
}

// BaseURL returns the API root
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Token returns the bearer token sent with every request
func (c *APIClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token; empty sends no Authorization header
func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// SetTimeout changes the default request timeout
func (c *APIClient) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// SignUp registers a credential account and keeps the returned token
func (c *APIClient) SignUp(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if _, err := c.do(ctx, fiber.MethodPost, "/api/auth/sign-up/email", body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// SignIn logs in with email and password and keeps the returned token
func (c *APIClient) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, fiber.MethodPost, "/api/auth/sign-in/email", body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// SignOut ends the current session and forgets the token
func (c *APIClient) SignOut(ctx context.Context) error {
	if _, err := c.do(ctx, fiber.MethodPost, "/api/auth/sign-out", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// GetSession returns the current session, or nil when signed out
func (c *APIClient) GetSession(ctx context.Context) (*SessionData, error) {
	var out *SessionData
	if _, err := c.do(ctx, fiber.MethodGet, "/api/auth/get-session", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfile returns the caller's profile
func (c *APIClient) GetProfile(ctx context.Context) (*User, error) {
	var out User
	if _, err := c.do(ctx, fiber.MethodGet, "/api/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the caller's name and/or image
func (c *APIClient) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var out User
	if _, err := c.do(ctx, fiber.MethodPatch, "/api/users/me", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSessions returns the caller's sessions, newest first
func (c *APIClient) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	var out []SessionInfo
	if _, err := c.do(ctx, fiber.MethodGet, "/api/users/me/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RevokeSession deletes one of the caller's sessions
func (c *APIClient) RevokeSession(ctx context.Context, id string) error {
	_, err := c.do(ctx, fiber.MethodDelete, "/api/users/me/sessions/"+url.PathEscape(id), nil, nil)
	return err
}

// RevokeOtherSessions deletes every session except the current one
func (c *APIClient) RevokeOtherSessions(ctx context.Context) error {
	_, err := c.do(ctx, fiber.MethodDelete, "/api/users/me/sessions", nil, nil)
	return err
}

// ListActivity returns one page of the caller's account activity
func (c *APIClient) ListActivity(ctx context.Context, page, limit int) (*ActivityPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/users/me/activity"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var events []ActivityEvent
	env, err := c.do(ctx, fiber.MethodGet, path, nil, &events)
	if err != nil {
		return nil, err
	}
	out := &ActivityPage{Events: events}
	if env.Pagination != nil {
		out.Pagination = *env.Pagination
	}
	return out, nil
}

// EventsURL is the WebSocket URL of the caller's event stream
func (c *APIClient) EventsURL() (string, error) {
	u, err := url.Parse(c.baseURL + "/api/users/me/events")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	return u.String(), nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) (*envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, fmt.Errorf("prepare %s %s: %w", method, path, err)
	}

	agent.UserAgent(userAgent).Timeout(c.requestTimeout(ctx))
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token := c.Token(); token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		agent.JSON(body)
	}

	status, raw, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}
	return decode(status, raw, out)
}

func (c *APIClient) requestTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < c.timeout {
			return left
		}
	}
	return c.timeout
}

func decode(status int, raw []byte, out interface{}) (*envelope, error) {
	env := &envelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			if status >= fiber.StatusBadRequest {
				return nil, &APIError{Status: status, Code: "HTTP_ERROR", Message: utils.StatusMessage(status)}
			}
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	if status >= fiber.StatusBadRequest || (len(raw) > 0 && !env.Success) {
		apiErr := &APIError{Status: status, Code: "HTTP_ERROR", Message: utils.StatusMessage(status)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return nil, apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env, nil
}
