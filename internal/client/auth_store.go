package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// StorageFile is the file name the auth store persists to
const StorageFile = "auth-storage.json"

// ErrSignOutFailed is the message stored when sign-out fails
const ErrSignOutFailed = "Failed to sign out"

// SessionAPI is the part of the API the auth store drives
type SessionAPI interface {
	GetSession(ctx context.Context) (*SessionData, error)
	SignOut(ctx context.Context) error
	Token() string
	SetToken(token string)
}

// AuthState is a snapshot of the auth store
type AuthState struct {
	User      *User
	Session   *Session
	IsLoading bool
	Error     string
}

type persistedAuth struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"token,omitempty"`
}

// DefaultStoragePath is <UserConfigDir>/lifeops/auth-storage.json
func DefaultStoragePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "lifeops", StorageFile), nil
}

// AuthStore holds the signed-in user and session. Only user, session and
// token are persisted.
type AuthStore struct {
	api  SessionAPI
	path string

	mu    sync.RWMutex
	state AuthState
}

// NewAuthStore restores the persisted state at path, if any, and hands the
// stored token to api. An empty path keeps the store in memory.
func NewAuthStore(api SessionAPI, path string) (*AuthStore, error) {
	s := &AuthStore{
		api:   api,
		path:  path,
		state: initialAuthState(),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func initialAuthState() AuthState {
	return AuthState{IsLoading: true}
}

// State returns a copy of the current state
func (s *AuthStore) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *AuthStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

func (s *AuthStore) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Session
}

// IsAuthenticated reports whether a user is known, even before the session is confirmed
func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User != nil
}

func (s *AuthStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoading
}

func (s *AuthStore) SetUser(user *User) error {
	return s.update(func(st *AuthState) {
		st.User = user
	})
}

func (s *AuthStore) SetSession(session *Session) error {
	return s.update(func(st *AuthState) {
		st.Session = session
	})
}

func (s *AuthStore) SetLoading(loading bool) {
	s.mu.Lock()
	s.state.IsLoading = loading
	s.mu.Unlock()
}

func (s *AuthStore) SetError(msg string) {
	s.mu.Lock()
	s.state.Error = msg
	s.mu.Unlock()
}

// FetchSession asks the server for the current session. Any failure clears
// user and session; a missing or rejected session also drops the token.
func (s *AuthStore) FetchSession(ctx context.Context) (*SessionData, error) {
	s.mu.Lock()
	s.state.IsLoading = true
	s.state.Error = ""
	s.mu.Unlock()

	data, err := s.api.GetSession(ctx)
	if err != nil || data == nil {
		if err == nil || IsStatus(err, fiber.StatusUnauthorized) {
			s.api.SetToken("")
		}
		if perr := s.update(func(st *AuthState) {
			st.User = nil
			st.Session = nil
			st.IsLoading = false
		}); perr != nil {
			return nil, errors.Join(err, perr)
		}
		return nil, err
	}

	user, session := data.User, data.Session
	if err := s.update(func(st *AuthState) {
		st.User = &user
		st.Session = &session
		st.IsLoading = false
	}); err != nil {
		return nil, err
	}
	return data, nil
}

// SignOut ends the session on the server and resets the store. On failure
// the state is kept and Error is set.
func (s *AuthStore) SignOut(ctx context.Context) error {
	s.SetLoading(true)
	if err := s.api.SignOut(ctx); err != nil {
		s.mu.Lock()
		s.state.IsLoading = false
		s.state.Error = ErrSignOutFailed
		s.mu.Unlock()
		return err
	}
	s.api.SetToken("")
	return s.update(func(st *AuthState) {
		*st = initialAuthState()
		st.IsLoading = false
	})
}

// Reset returns the store to its initial state
func (s *AuthStore) Reset() error {
	s.api.SetToken("")
	return s.update(func(st *AuthState) {
		*st = initialAuthState()
	})
}

func (s *AuthStore) update(fn func(*AuthState)) error {
	s.mu.Lock()
	fn(&s.state)
	snapshot := persistedAuth{
		User:    s.state.User,
		Session: s.state.Session,
		Token:   s.api.Token(),
	}
	s.mu.Unlock()
	return s.save(snapshot)
}

func (s *AuthStore) load() error {
	if s.path == "" {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read auth storage: %w", err)
	}

	var stored persistedAuth
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("decode auth storage: %w", err)
	}
	s.state.User = stored.User
	s.state.Session = stored.Session
	if stored.Token != "" {
		s.api.SetToken(stored.Token)
	}
	return nil
}

func (s *AuthStore) save(p persistedAuth) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create auth storage dir: %w", err)
	}
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode auth storage: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write auth storage: %w", err)
	}
	return nil
}
