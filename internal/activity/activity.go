package activity

import (
	"context"
	"fmt"

	activityhttp "lifeops/internal/activity/adapter/http"
	"lifeops/internal/activity/adapter/persistence/mongodb"
	"lifeops/internal/activity/adapter/persistence/postgres"
	"lifeops/internal/activity/adapter/realtime"
	"lifeops/internal/activity/domain/repository"
	"lifeops/internal/activity/usecase"
	"lifeops/internal/shared/eventbus"
	"lifeops/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Options selects the activity store
type Options struct {
	// Mongo stores events in MongoDB when set; otherwise DB is used
	Mongo  *mongo.Database
	DB     *gorm.DB
	Logger logger.Logger
	// BufferSize bounds undelivered realtime messages per connection
	BufferSize int
}

// ActivityModule records account events and streams them to their owners
type ActivityModule struct {
	repository repository.EventRepository
	usecase    *usecase.ActivityUsecase
	hub        *realtime.Hub
	handler    *activityhttp.ActivityHTTPHandler
	backend    string
}

// NewActivityModule creates the module on the configured store
func NewActivityModule(ctx context.Context, opts Options) (*ActivityModule, error) {
	var (
		repo    repository.EventRepository
		backend string
	)
	switch {
	case opts.Mongo != nil:
		mongoRepo, err := mongodb.NewMongoEventRepository(ctx, opts.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to create mongodb activity repository: %w", err)
		}
		repo, backend = mongoRepo, "mongodb"
	case opts.DB != nil:
		repo, backend = postgres.NewEventRepository(opts.DB), "postgres"
	default:
		return nil, fmt.Errorf("activity module needs a mongodb or sql database")
	}

	activityUsecase := usecase.NewActivityUsecase(repo, opts.Logger)
	hub := realtime.NewHub(opts.Logger, opts.BufferSize)

	return &ActivityModule{
		repository: repo,
		usecase:    activityUsecase,
		hub:        hub,
		handler:    activityhttp.NewActivityHTTPHandler(activityUsecase, hub, opts.Logger),
		backend:    backend,
	}, nil
}

// Subscribe attaches the recorder and the realtime hub to every bus event
func (m *ActivityModule) Subscribe(bus eventbus.Bus) {
	bus.Subscribe(eventbus.Wildcard, m.usecase.Handle)
	bus.Subscribe(eventbus.Wildcard, m.hub.Handle)
}

// RegisterRoutes mounts /activity and /events on the authenticated /users/me group
func (m *ActivityModule) RegisterRoutes(me fiber.Router) {
	m.handler.RegisterRoutes(me)
}

// GetUsecase returns the activity usecase
func (m *ActivityModule) GetUsecase() usecase.ActivityUsecaseInterface {
	return m.usecase
}

// GetHub returns the realtime hub
func (m *ActivityModule) GetHub() *realtime.Hub {
	return m.hub
}

// Backend names the store in use
func (m *ActivityModule) Backend() string {
	return m.backend
}

// Close disconnects every realtime client
func (m *ActivityModule) Close() {
	m.hub.Close()
}

// Migrate creates the SQL activity table
func Migrate(db *gorm.DB) error {
	return postgres.Migrate(db)
}
