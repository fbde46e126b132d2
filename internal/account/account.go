package account

import (
	accounthttp "lifeops/internal/account/adapter/http"
	"lifeops/internal/account/usecase"
	"lifeops/internal/auth/domain/repository"
	"lifeops/internal/shared/eventbus"
	"lifeops/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// AccountModule serves the caller's profile and sessions
type AccountModule struct {
	usecase *usecase.AccountUsecase
	handler *accounthttp.AccountHTTPHandler
}

// NewAccountModule builds the module over the auth provider's repository
func NewAccountModule(repo repository.AuthRepository, events eventbus.Publisher, log logger.Logger) *AccountModule {
	uc := usecase.NewAccountUsecase(repo, events, log)
	return &AccountModule{
		usecase: uc,
		handler: accounthttp.NewAccountHTTPHandler(uc),
	}
}

// RegisterRoutes mounts the profile and session routes on the authenticated /users/me group
func (m *AccountModule) RegisterRoutes(me fiber.Router) {
	m.handler.RegisterRoutes(me)
}

// GetUsecase returns the account usecase
func (m *AccountModule) GetUsecase() usecase.AccountUsecaseInterface {
	return m.usecase
}
