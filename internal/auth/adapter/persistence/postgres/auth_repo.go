package postgres

import (
	"context"
	"errors"
	"time"

	"lifeops/internal/auth/domain/model"
	"lifeops/internal/auth/domain/repository"
	apperrors "lifeops/internal/shared/errors"

	"gorm.io/gorm"
)

// AuthRepository implements repository.AuthRepository with gorm
type AuthRepository struct {
	db *gorm.DB
}

// NewAuthRepository creates a new gorm-backed auth repository
func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

var _ repository.AuthRepository = (*AuthRepository)(nil)

// Migrate creates or updates the auth tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.Models()...)
}

// wrap classifies a gorm error. Unique violations arrive as gorm.ErrDuplicatedKey
// because the connection is opened with TranslateError.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewDatabaseError(op, apperrors.DatabaseErrorUniqueViolation, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewDatabaseError(op, apperrors.DatabaseErrorRecordNotFound, err)
	default:
		return apperrors.NewDatabaseError(op, apperrors.DatabaseErrorOther, err)
	}
}

// first loads one row into dest, mapping a miss to repository.ErrNotFound
func first(op string, tx *gorm.DB, dest interface{}) error {
	err := tx.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return wrap(op, err)
}

func missing(op string) error {
	return apperrors.NewDatabaseError(op, apperrors.DatabaseErrorRecordNotFound, gorm.ErrRecordNotFound)
}

// User operations

func (r *AuthRepository) CreateUserWithAccount(ctx context.Context, user *model.User, account *model.Account) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		account.UserID = user.ID
		return tx.Create(account).Error
	})
	return wrap("create user", err)
}

func (r *AuthRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := first("get user", r.db.WithContext(ctx).Where("id = ?", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := first("get user by email", r.db.WithContext(ctx).Where("email = ?", email), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) UpdateUser(ctx context.Context, id string, changes model.UserChanges) (*model.User, error) {
	const op = "update user"
	if changes.Empty() {
		user, err := r.GetUserByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, missing(op)
		}
		return user, err
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	if changes.Image != nil {
		updates["image"] = *changes.Image
	}

	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, wrap(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, missing(op)
	}

	user, err := r.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, missing(op)
	}
	return user, err
}

// Account operations

func (r *AuthRepository) GetAccount(ctx context.Context, providerID, accountID string) (*model.Account, error) {
	var account model.Account
	tx := r.db.WithContext(ctx).Where("provider_id = ? AND account_id = ?", providerID, accountID)
	if err := first("get account", tx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AuthRepository) GetUserAccount(ctx context.Context, userID, providerID string) (*model.Account, error) {
	var account model.Account
	tx := r.db.WithContext(ctx).Where("user_id = ? AND provider_id = ?", userID, providerID)
	if err := first("get user account", tx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AuthRepository) CreateAccount(ctx context.Context, account *model.Account) error {
	return wrap("create account", r.db.WithContext(ctx).Create(account).Error)
}

func (r *AuthRepository) UpdateAccount(ctx context.Context, account *model.Account) error {
	const op = "update account"
	res := r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", account.ID).Updates(map[string]interface{}{
		"password":                account.Password,
		"access_token":            account.AccessToken,
		"refresh_token":           account.RefreshToken,
		"id_token":                account.IDToken,
		"access_token_expires_at": account.AccessTokenExpiresAt,
		"scope":                   account.Scope,
		"updated_at":              time.Now().UTC(),
	})
	if res.Error != nil {
		return wrap(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return missing(op)
	}
	return nil
}

// Session operations

func (r *AuthRepository) CreateSession(ctx context.Context, session *model.Session) error {
	return wrap("create session", r.db.WithContext(ctx).Create(session).Error)
}

func (r *AuthRepository) GetSessionByToken(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	if err := first("get session", r.db.WithContext(ctx).Where("token = ?", token), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *AuthRepository) ExtendSession(ctx context.Context, id string, expiresAt time.Time) error {
	const op = "extend session"
	res := r.db.WithContext(ctx).Model(&model.Session{}).Where("id = ?", id).Updates(map[string]interface{}{
		"expires_at": expiresAt,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return wrap(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return missing(op)
	}
	return nil
}

func (r *AuthRepository) DeleteSession(ctx context.Context, id string) error {
	return wrap("delete session", r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{}).Error)
}

func (r *AuthRepository) ListUserSessions(ctx context.Context, userID string) ([]*model.Session, error) {
	sessions := make([]*model.Session, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, wrap("list sessions", err)
	}
	return sessions, nil
}

func (r *AuthRepository) DeleteUserSession(ctx context.Context, userID, sessionID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).Delete(&model.Session{})
	if res.Error != nil {
		return false, wrap("delete user session", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *AuthRepository) DeleteOtherSessions(ctx context.Context, userID, keepID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id <> ?", userID, keepID).Delete(&model.Session{})
	if res.Error != nil {
		return 0, wrap("delete other sessions", res.Error)
	}
	return res.RowsAffected, nil
}
