package database_test

import (
	"context"
	"testing"

	"lifeops/internal/shared/database"
	"lifeops/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	assert.NoError(t, database.Ping(context.Background(), db))
}

func TestPing_ClosedPool(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, database.Close(db))
	assert.Error(t, database.Ping(context.Background(), db))
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, database.Close(nil))
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := database.NewRedisClient(context.Background(), "http://not-redis")
	assert.Error(t, err)
}
