package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"lifeops/internal/auth/adapter/persistence/postgres"
	"lifeops/internal/auth/adapter/security"
	"lifeops/internal/auth/config"
	"lifeops/internal/auth/domain/model"
	"lifeops/internal/auth/domain/repository"
	"lifeops/internal/auth/usecase"
	"lifeops/internal/shared/eventbus"
	sharedtestutil "lifeops/internal/shared/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Secret is the signing secret of Config
const Secret = "test-secret-key-32-characters-long-12345"

// Config returns an auth configuration suitable for tests
func Config() *config.Config {
	return &config.Config{
		Secret:          Secret,
		BaseURL:         "http://localhost:8080",
		FrontendURL:     "http://localhost:3000",
		TrustedOrigins:  []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		ExpiresIn:       7 * 24 * time.Hour,
		UpdateAge:       24 * time.Hour,
		CacheMaxAge:     5 * time.Minute,
		StateMaxAge:     10 * time.Minute,
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
		CookiePath:      "/",
		CookieHTTPOnly:  true,
		CookieSameSite:  "Lax",
	}
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *RecordingPublisher) PublishAndForget(_ context.Context, event eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Types returns the types of the recorded events in publish order
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type())
	}
	return types
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]eventbus.Event(nil), p.events...)
}

// Clock is a settable time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at now
func NewClock(now time.Time) *Clock { return &Clock{now: now} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FakeProvider is a SocialProvider that returns a canned profile
type FakeProvider struct {
	Profile *model.SocialProfile
	Err     error
}

func (p *FakeProvider) ID() string { return model.ProviderGoogle }

func (p *FakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *FakeProvider) Exchange(context.Context, string) (*model.SocialProfile, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	profile := *p.Profile
	return &profile, nil
}

var _ repository.SocialProvider = (*FakeProvider)(nil)

// Env is a fully wired auth usecase over an in-memory SQLite database
type Env struct {
	DB      *gorm.DB
	Repo    *postgres.AuthRepository
	Config  *config.Config
	Events  *RecordingPublisher
	Usecase *usecase.AuthUsecase
	Cache   *security.JWTSessionCache
}

// NewEnv builds an Env; modify may adjust the dependencies before the usecase is created
func NewEnv(t testing.TB, modify ...func(*usecase.Dependencies)) *Env {
	t.Helper()

	cfg := Config()
	db := sharedtestutil.NewSQLiteDB(t, model.Models()...)
	repo := postgres.NewAuthRepository(db)

	cache, err := security.NewJWTSessionCache(cfg)
	require.NoError(t, err)
	state, err := security.NewJWTStateSigner(cfg)
	require.NoError(t, err)

	events := &RecordingPublisher{}
	deps := usecase.Dependencies{
		Repo:   repo,
		Hasher: security.NewBcryptHasher(bcrypt.MinCost),
		Tokens: security.RandomTokenGenerator{},
		Cache:  cache,
		State:  state,
		Events: events,
	}
	for _, m := range modify {
		m(&deps)
	}

	return &Env{
		DB:      db,
		Repo:    repo,
		Config:  cfg,
		Events:  events,
		Usecase: usecase.NewAuthUsecase(cfg, deps),
		Cache:   cache,
	}
}

// SignUp registers a user through the usecase
func (e *Env) SignUp(t testing.TB, email, password string) *usecase.AuthResult {
	t.Helper()
	req := usecase.SignUpRequest{Name: "Test User", Email: email, Password: password}
	req.Normalize()
	result, err := e.Usecase.SignUpEmail(context.Background(), req, usecase.RequestMeta{IPAddress: "127.0.0.1", UserAgent: "go-test"})
	require.NoError(t, err)
	return result
}
