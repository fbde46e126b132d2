package testutil

import (
	"strings"
	"testing"

	"lifeops/internal/shared/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens an isolated in-memory SQLite database and migrates the given models
func NewSQLiteDB(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := database.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared&_foreign_keys=1"), false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
