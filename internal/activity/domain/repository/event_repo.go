package repository

import (
	"context"

	"lifeops/internal/activity/domain/model"
)

// EventRepository stores account activity
type EventRepository interface {
	Record(ctx context.Context, event *model.Event) error
	// ListByUser returns one page of the user's events newest first and the total count
	ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Event, int64, error)
}

// MaxPage is the deepest page a listing can ask for
const MaxPage = 10000

// Offset converts a 1-based page into a row offset; page is clamped to [1, MaxPage]
func Offset(page, limit int) int {
	page = min(max(page, 1), MaxPage)
	return (page - 1) * limit
}
