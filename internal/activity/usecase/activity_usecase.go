package usecase

import (
	"context"
	"fmt"

	"lifeops/internal/activity/domain/model"
	"lifeops/internal/activity/domain/repository"
	"lifeops/internal/shared/eventbus"
	"lifeops/internal/shared/logger"

	"github.com/google/uuid"
)

// Page bounds of the activity listing
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// EventPage is one page of a user's activity
type EventPage struct {
	Events []model.Event
	Page   int
	Limit  int
	Total  int64
}

// ActivityUsecaseInterface reads and records account activity
type ActivityUsecaseInterface interface {
	List(ctx context.Context, userID string, page, limit int) (*EventPage, error)
	// Handle records a bus event; it is subscribed to every event type
	Handle(ctx context.Context, event eventbus.Event) error
}

// ActivityUsecase implements ActivityUsecaseInterface
type ActivityUsecase struct {
	repo  repository.EventRepository
	log   logger.Logger
	newID func() string
}

// NewActivityUsecase creates a new activity usecase
func NewActivityUsecase(repo repository.EventRepository, log logger.Logger) *ActivityUsecase {
	if log == nil {
		log = logger.NewNop()
	}
	return &ActivityUsecase{
		repo:  repo,
		log:   log.WithComponent("activity"),
		newID: uuid.NewString,
	}
}

// List returns one page of the user's events newest first
func (uc *ActivityUsecase) List(ctx context.Context, userID string, page, limit int) (*EventPage, error) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	events, total, err := uc.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return &EventPage{Events: events, Page: page, Limit: limit, Total: total}, nil
}

// Handle persists account events and ignores everything else
func (uc *ActivityUsecase) Handle(ctx context.Context, event eventbus.Event) error {
	record, ok := model.FromAccountEvent(uc.newID(), event)
	if !ok {
		return nil
	}
	if err := uc.repo.Record(ctx, record); err != nil {
		uc.log.WithContext(ctx).Warnf("failed to record %s for user %s: %v", record.Type, record.UserID, err)
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

var _ ActivityUsecaseInterface = (*ActivityUsecase)(nil)
