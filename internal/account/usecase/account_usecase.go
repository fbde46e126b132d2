package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"lifeops/internal/auth/authctx"
	"lifeops/internal/auth/domain/model"
	"lifeops/internal/auth/domain/repository"
	authusecase "lifeops/internal/auth/usecase"
	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/eventbus"
	"lifeops/internal/shared/logger"
)

const eventSource = "account"

// Profile is the public projection of a user
type Profile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Image         *string   `json:"image"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewProfile projects a stored user
func NewProfile(user *model.User) *Profile {
	return &Profile{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Image:         user.Image,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// SessionView is one entry of the session listing
type SessionView struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	IsCurrent bool      `json:"isCurrent"`
}

// AccountUsecaseInterface serves the caller's profile and sessions
type AccountUsecaseInterface interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, identity authctx.Identity, req UpdateProfileRequest, meta authusecase.RequestMeta) (*Profile, error)
	ListSessions(ctx context.Context, identity authctx.Identity) ([]SessionView, error)
	// DeleteSession is a no-op when the session is absent or belongs to someone else
	DeleteSession(ctx context.Context, identity authctx.Identity, sessionID string, meta authusecase.RequestMeta) error
	// DeleteOtherSessions keeps only the current session and reports how many were removed
	DeleteOtherSessions(ctx context.Context, identity authctx.Identity, meta authusecase.RequestMeta) (int64, error)
}

// AccountUsecase implements AccountUsecaseInterface
type AccountUsecase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	events   eventbus.Publisher
	log      logger.Logger
}

// NewAccountUsecase creates a new account usecase
func NewAccountUsecase(repo repository.AuthRepository, events eventbus.Publisher, log logger.Logger) *AccountUsecase {
	if log == nil {
		log = logger.NewNop()
	}
	return &AccountUsecase{
		users:    repo,
		sessions: repo,
		events:   events,
		log:      log.WithComponent("account"),
	}
}

// GetProfile returns the user's profile
func (uc *AccountUsecase) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User")
		}
		return nil, err
	}
	return NewProfile(user), nil
}

// UpdateProfile writes only the provided fields
func (uc *AccountUsecase) UpdateProfile(ctx context.Context, identity authctx.Identity, req UpdateProfileRequest, meta authusecase.RequestMeta) (*Profile, error) {
	changes := model.UserChanges{Name: req.Name, Image: req.Image}
	user, err := uc.users.UpdateUser(ctx, identity.User.ID, changes)
	if err != nil {
		return nil, err
	}

	if !changes.Empty() {
		fields := make(map[string]string, 2)
		if changes.Name != nil {
			fields["name"] = "updated"
		}
		if changes.Image != nil {
			fields["image"] = "updated"
		}
		uc.publish(ctx, eventbus.EventTypeProfileUpdated, identity, "", meta, fields)
	}
	return NewProfile(user), nil
}

// ListSessions returns the caller's sessions newest first, flagging the current one
func (uc *AccountUsecase) ListSessions(ctx context.Context, identity authctx.Identity) ([]SessionView, error) {
	sessions, err := uc.sessions.ListUserSessions(ctx, identity.User.ID)
	if err != nil {
		return nil, err
	}
	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, SessionView{
			ID:        s.ID,
			UserAgent: s.UserAgent,
			IPAddress: s.IPAddress,
			ExpiresAt: s.ExpiresAt,
			CreatedAt: s.CreatedAt,
			IsCurrent: s.ID == identity.Session.ID,
		})
	}
	return views, nil
}

// DeleteSession removes one of the caller's sessions
func (uc *AccountUsecase) DeleteSession(ctx context.Context, identity authctx.Identity, sessionID string, meta authusecase.RequestMeta) error {
	deleted, err := uc.sessions.DeleteUserSession(ctx, identity.User.ID, sessionID)
	if err != nil {
		return err
	}
	if deleted {
		uc.publish(ctx, eventbus.EventTypeSessionRevoked, identity, sessionID, meta, nil)
	}
	return nil
}

// DeleteOtherSessions removes every session of the caller except the current one
func (uc *AccountUsecase) DeleteOtherSessions(ctx context.Context, identity authctx.Identity, meta authusecase.RequestMeta) (int64, error) {
	count, err := uc.sessions.DeleteOtherSessions(ctx, identity.User.ID, identity.Session.ID)
	if err != nil {
		return 0, err
	}
	uc.log.WithContext(ctx).Infof("terminated %d other sessions", count)
	uc.publish(ctx, eventbus.EventTypeOtherSessionsRevoked, identity, identity.Session.ID, meta,
		map[string]string{"count": strconv.FormatInt(count, 10)})
	return count, nil
}

func (uc *AccountUsecase) publish(ctx context.Context, eventType string, identity authctx.Identity, sessionID string, meta authusecase.RequestMeta, metadata map[string]string) {
	if uc.events == nil {
		return
	}
	if sessionID == "" {
		sessionID = identity.Session.ID
	}
	uc.events.PublishAndForget(ctx, eventbus.NewAccountEvent(eventType, eventSource, eventbus.AccountEvent{
		UserID:    identity.User.ID,
		SessionID: sessionID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Metadata:  metadata,
	}))
}

var _ AccountUsecaseInterface = (*AccountUsecase)(nil)
