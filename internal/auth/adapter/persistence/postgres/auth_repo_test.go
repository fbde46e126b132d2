package postgres

import (
	"context"
	"testing"
	"time"

	"lifeops/internal/auth/domain/model"
	"lifeops/internal/auth/domain/repository"
	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *AuthRepository {
	t.Helper()
	return NewAuthRepository(testutil.NewSQLiteDB(t, model.Models()...))
}

func seedUser(t *testing.T, repo *AuthRepository, email string) *model.User {
	t.Helper()
	hash := "hash"
	user := &model.User{ID: uuid.NewString(), Email: email, Name: "Test User"}
	account := &model.Account{
		ID:         uuid.NewString(),
		ProviderID: model.ProviderCredential,
		AccountID:  user.ID,
		Password:   &hash,
	}
	require.NoError(t, repo.CreateUserWithAccount(context.Background(), user, account))
	return user
}

func seedSession(t *testing.T, repo *AuthRepository, userID string, createdAt time.Time) *model.Session {
	t.Helper()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.CreateSession(context.Background(), session))
	return session
}

func TestAuthRepository_CreateAndGetUser(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo, "alice@example.com")

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	account, err := repo.GetUserAccount(ctx, user.ID, model.ProviderCredential)
	require.NoError(t, err)
	require.NotNil(t, account.Password)
	assert.Equal(t, "hash", *account.Password)
}

func TestAuthRepository_GetMissing(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetSessionByToken(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetAccount(ctx, model.ProviderGoogle, "sub")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAuthRepository_DuplicateEmail(t *testing.T) {
	repo := newRepo(t)
	seedUser(t, repo, "dup@example.com")

	hash := "hash"
	user := &model.User{ID: uuid.NewString(), Email: "dup@example.com", Name: "Other"}
	account := &model.Account{ID: uuid.NewString(), ProviderID: model.ProviderCredential, AccountID: user.ID, Password: &hash}
	err := repo.CreateUserWithAccount(context.Background(), user, account)

	dbErr, ok := apperrors.AsDatabaseError(err)
	require.True(t, ok, "expected a DatabaseError, got %v", err)
	assert.Equal(t, apperrors.DatabaseErrorUniqueViolation, dbErr.Kind)

	// the transaction must not leave the account behind
	_, err = repo.GetUserAccount(context.Background(), user.ID, model.ProviderCredential)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAuthRepository_UpdateUser(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo, "bob@example.com")

	name := "Bobby"
	updated, err := repo.UpdateUser(ctx, user.ID, model.UserChanges{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", updated.Name)
	assert.Nil(t, updated.Image)

	image := "https://example.com/a.png"
	updated, err = repo.UpdateUser(ctx, user.ID, model.UserChanges{Image: &image})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", updated.Name)
	require.NotNil(t, updated.Image)
	assert.Equal(t, image, *updated.Image)

	unchanged, err := repo.UpdateUser(ctx, user.ID, model.UserChanges{})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", unchanged.Name)
}

func TestAuthRepository_UpdateMissingUser(t *testing.T) {
	repo := newRepo(t)
	name := "Ghost"

	for _, changes := range []model.UserChanges{{Name: &name}, {}} {
		_, err := repo.UpdateUser(context.Background(), "missing", changes)
		dbErr, ok := apperrors.AsDatabaseError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.DatabaseErrorRecordNotFound, dbErr.Kind)
	}
}

func TestAuthRepository_Sessions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo, "carol@example.com")
	other := seedUser(t, repo, "dave@example.com")

	base := time.Now().Add(-time.Hour).UTC()
	oldest := seedSession(t, repo, user.ID, base)
	middle := seedSession(t, repo, user.ID, base.Add(time.Minute))
	newest := seedSession(t, repo, user.ID, base.Add(2*time.Minute))
	foreign := seedSession(t, repo, other.ID, base)

	sessions, err := repo.ListUserSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, newest.ID, sessions[0].ID)
	assert.Equal(t, middle.ID, sessions[1].ID)
	assert.Equal(t, oldest.ID, sessions[2].ID)

	found, err := repo.GetSessionByToken(ctx, middle.Token)
	require.NoError(t, err)
	assert.Equal(t, middle.ID, found.ID)

	deleted, err := repo.DeleteUserSession(ctx, user.ID, foreign.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "foreign sessions must not be deleted")

	deleted, err = repo.DeleteUserSession(ctx, user.ID, oldest.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteUserSession(ctx, user.ID, oldest.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	n, err := repo.DeleteOtherSessions(ctx, user.ID, newest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	sessions, err = repo.ListUserSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, newest.ID, sessions[0].ID)

	remaining, err := repo.ListUserSessions(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestAuthRepository_ExtendAndDeleteSession(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo, "erin@example.com")
	session := seedSession(t, repo, user.ID, time.Now().UTC())

	later := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.ExtendSession(ctx, session.ID, later))

	found, err := repo.GetSessionByToken(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, found.ExpiresAt.Equal(later))

	require.NoError(t, repo.DeleteSession(ctx, session.ID))
	_, err = repo.GetSessionByToken(ctx, session.Token)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.ExtendSession(ctx, session.ID, later)
	dbErr, ok := apperrors.AsDatabaseError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.DatabaseErrorRecordNotFound, dbErr.Kind)
}

func TestAuthRepository_EmptySessionListIsNotNil(t *testing.T) {
	repo := newRepo(t)
	sessions, err := repo.ListUserSessions(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}
