package auth

import (
	"fmt"

	authhttp "lifeops/internal/auth/adapter/http"
	"lifeops/internal/auth/adapter/oauth"
	"lifeops/internal/auth/adapter/persistence/postgres"
	"lifeops/internal/auth/adapter/policy"
	"lifeops/internal/auth/adapter/security"
	"lifeops/internal/auth/config"
	"lifeops/internal/auth/domain/repository"
	"lifeops/internal/auth/usecase"
	"lifeops/internal/shared/eventbus"
	"lifeops/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options carries the optional collaborators of the auth module
type Options struct {
	Events eventbus.Publisher
	Logger logger.Logger
	// LimiterStorage backs the sign-in rate limiter; nil keeps counters in memory
	LimiterStorage fiber.Storage
	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
	// Providers replaces the configured social providers
	Providers []repository.SocialProvider
}

// AuthModule represents the complete authentication module
type AuthModule struct {
	repository repository.AuthRepository
	usecase    usecase.AuthUsecaseInterface
	handler    *authhttp.AuthHTTPHandler
	middleware *authhttp.AuthMiddleware
	config     *config.Config
}

// NewAuthModule creates a new authentication module instance
func NewAuthModule(db *gorm.DB, cfg *config.Config, opts Options) (*AuthModule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth configuration: %w", err)
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	authRepo := postgres.NewAuthRepository(db)

	cache, err := security.NewJWTSessionCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	state, err := security.NewJWTStateSigner(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create state signer: %w", err)
	}
	signupPolicy, err := policy.New(cfg.SignupPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to compile sign-up policy: %w", err)
	}

	providers := opts.Providers
	if providers == nil {
		if google := oauth.NewGoogleProvider(cfg); google != nil {
			providers = append(providers, google)
		}
	}

	authUsecase := usecase.NewAuthUsecase(cfg, usecase.Dependencies{
		Repo:      authRepo,
		Hasher:    security.NewBcryptHasher(opts.BcryptCost),
		Tokens:    security.RandomTokenGenerator{},
		Cache:     cache,
		State:     state,
		Policy:    signupPolicy,
		Providers: providers,
		Events:    opts.Events,
		Logger:    opts.Logger,
	})

	return &AuthModule{
		repository: authRepo,
		usecase:    authUsecase,
		handler:    authhttp.NewAuthHTTPHandler(authUsecase, cfg, opts.LimiterStorage, opts.Logger),
		middleware: authhttp.NewAuthMiddleware(authUsecase, cfg, opts.Logger),
		config:     cfg,
	}, nil
}

// RegisterRoutes registers authentication routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.SetupAuthRoutesWithMiddleware(router, am.middleware)
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// GetRepository returns the persistence layer shared with the account module
func (am *AuthModule) GetRepository() repository.AuthRepository {
	return am.repository
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}

// Migrate creates the auth tables
func Migrate(db *gorm.DB) error {
	return postgres.Migrate(db)
}
