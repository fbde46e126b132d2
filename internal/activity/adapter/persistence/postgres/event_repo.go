package postgres

import (
	"context"
	"errors"

	"lifeops/internal/activity/domain/model"
	"lifeops/internal/activity/domain/repository"
	apperrors "lifeops/internal/shared/errors"

	"gorm.io/gorm"
)

// EventRepository implements repository.EventRepository with gorm
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a gorm-backed activity repository
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Migrate creates the activity table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Event{})
}

func wrap(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.NewDatabaseError(op, apperrors.DatabaseErrorUniqueViolation, err)
	}
	return apperrors.NewDatabaseError(op, apperrors.DatabaseErrorOther, err)
}

// Record inserts one event
func (r *EventRepository) Record(ctx context.Context, event *model.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return wrap("record activity", err)
	}
	return nil
}

// ListByUser returns one page of the user's events newest first
func (r *EventRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Event, int64, error) {
	byUser := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Event{}).Where("user_id = ?", userID)
	}

	var total int64
	if err := byUser().Count(&total).Error; err != nil {
		return nil, 0, wrap("count activity", err)
	}

	events := make([]model.Event, 0, limit)
	err := byUser().
		Order("created_at DESC").
		Order("id DESC").
		Offset(repository.Offset(page, limit)).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, wrap("list activity", err)
	}
	return events, total, nil
}

var _ repository.EventRepository = (*EventRepository)(nil)
