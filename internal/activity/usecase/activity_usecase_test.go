package usecase

import (
	"context"
	"errors"
	"testing"

	"lifeops/internal/activity/domain/model"
	"lifeops/internal/shared/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Record(ctx context.Context, event *model.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Event, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	events, _ := args.Get(0).([]model.Event)
	return events, args.Get(1).(int64), args.Error(2)
}

func newTestUsecase(repo *MockEventRepository) *ActivityUsecase {
	uc := NewActivityUsecase(repo, nil)
	uc.newID = func() string { return "event-1" }
	return uc
}

func TestHandle_RecordsAccountEvents(t *testing.T) {
	repo := new(MockEventRepository)
	uc := newTestUsecase(repo)

	event := eventbus.NewAccountEvent(eventbus.EventTypeUserSignedIn, "auth", eventbus.AccountEvent{
		UserID:    "user-1",
		SessionID: "session-1",
		IPAddress: "10.0.0.1",
		UserAgent: "go-test",
		Metadata:  map[string]string{"provider": "credential"},
	})

	repo.On("Record", mock.Anything, mock.MatchedBy(func(e *model.Event) bool {
		return e.ID == "event-1" &&
			e.UserID == "user-1" &&
			e.Type == eventbus.EventTypeUserSignedIn &&
			e.SessionID == "session-1" &&
			e.Metadata["provider"] == "credential" &&
			e.CreatedAt.Equal(event.Timestamp())
	})).Return(nil).Once()

	require.NoError(t, uc.Handle(context.Background(), event))
	repo.AssertExpectations(t)
}

func TestHandle_IgnoresForeignPayloads(t *testing.T) {
	repo := new(MockEventRepository)
	uc := newTestUsecase(repo)

	assert.NoError(t, uc.Handle(context.Background(), eventbus.NewBasicEvent("other", "payload")))
	assert.NoError(t, uc.Handle(context.Background(), eventbus.NewAccountEvent("x", "auth", eventbus.AccountEvent{})))
	repo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestHandle_RecordFailure(t *testing.T) {
	repo := new(MockEventRepository)
	uc := newTestUsecase(repo)
	repo.On("Record", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	err := uc.Handle(context.Background(), eventbus.NewAccountEvent(eventbus.EventTypeUserSignedOut, "auth",
		eventbus.AccountEvent{UserID: "user-1"}))
	assert.ErrorContains(t, err, "disk full")
}

func TestList_ClampsPaging(t *testing.T) {
	tests := []struct {
		name                string
		page, limit         int
		wantPage, wantLimit int
	}{
		{"defaults", 0, 0, 1, DefaultLimit},
		{"max limit", 2, 500, 2, MaxLimit},
		{"as given", 3, 10, 3, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockEventRepository)
			uc := newTestUsecase(repo)
			repo.On("ListByUser", mock.Anything, "user-1", tt.wantPage, tt.wantLimit).
				Return([]model.Event{{ID: "e"}}, int64(1), nil).Once()

			page, err := uc.List(context.Background(), "user-1", tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantLimit, page.Limit)
			assert.Equal(t, int64(1), page.Total)
			assert.Len(t, page.Events, 1)
		})
	}
}

func TestList_RepositoryError(t *testing.T) {
	repo := new(MockEventRepository)
	uc := newTestUsecase(repo)
	repo.On("ListByUser", mock.Anything, "user-1", 1, 20).Return(nil, int64(0), errors.New("boom")).Once()

	page, err := uc.List(context.Background(), "user-1", 1, 20)
	assert.Error(t, err)
	assert.Nil(t, page)
}
