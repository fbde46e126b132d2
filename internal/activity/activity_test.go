package activity_test

import (
	"context"
	"testing"
	"time"

	"lifeops/internal/activity"
	"lifeops/internal/shared/eventbus"
	"lifeops/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivityModule_RequiresStore(t *testing.T) {
	_, err := activity.NewActivityModule(context.Background(), activity.Options{})
	assert.Error(t, err)
}

func TestActivityModule_RecordsAndStreamsBusEvents(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, activity.Migrate(db))

	module, err := activity.NewActivityModule(context.Background(), activity.Options{DB: db})
	require.NoError(t, err)
	defer module.Close()
	assert.Equal(t, "postgres", module.Backend())

	bus := eventbus.NewEventBus(nil)
	module.Subscribe(bus)
	client := module.GetHub().Register("user-1")

	bus.PublishAndForget(context.Background(), eventbus.NewAccountEvent(eventbus.EventTypeUserSignedUp, "auth",
		eventbus.AccountEvent{UserID: "user-1", Metadata: map[string]string{"provider": "credential"}}))
	bus.Wait()

	select {
	case msg := <-client.Messages():
		assert.Equal(t, eventbus.EventTypeUserSignedUp, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("no realtime message")
	}

	page, err := module.GetUsecase().List(context.Background(), "user-1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "credential", page.Events[0].Metadata["provider"])
}
