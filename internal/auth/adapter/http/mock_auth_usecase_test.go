package http

import (
	"context"

	"lifeops/internal/auth/authctx"
	"lifeops/internal/auth/domain/model"
	"lifeops/internal/auth/usecase"

	"github.com/stretchr/testify/mock"
)

// MockAuthUsecase is a mock implementation of usecase.AuthUsecaseInterface
type MockAuthUsecase struct {
	mock.Mock
}

var _ usecase.AuthUsecaseInterface = (*MockAuthUsecase)(nil)

func (m *MockAuthUsecase) SignUpEmail(ctx context.Context, req usecase.SignUpRequest, meta usecase.RequestMeta) (*usecase.AuthResult, error) {
	args := m.Called(ctx, req, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResult), args.Error(1)
}

func (m *MockAuthUsecase) SignInEmail(ctx context.Context, req usecase.SignInRequest, meta usecase.RequestMeta) (*usecase.AuthResult, error) {
	args := m.Called(ctx, req, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResult), args.Error(1)
}

func (m *MockAuthUsecase) SignOut(ctx context.Context, sessionToken string, meta usecase.RequestMeta) error {
	args := m.Called(ctx, sessionToken, meta)
	return args.Error(0)
}

func (m *MockAuthUsecase) GetSession(ctx context.Context, sessionToken, cacheToken string) (*usecase.SessionResult, error) {
	args := m.Called(ctx, sessionToken, cacheToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SessionResult), args.Error(1)
}

func (m *MockAuthUsecase) ChangePassword(ctx context.Context, identity authctx.Identity, req usecase.ChangePasswordRequest, meta usecase.RequestMeta) (*model.User, error) {
	args := m.Called(ctx, identity, req, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthUsecase) SocialSignIn(ctx context.Context, req usecase.SocialSignInRequest) (*usecase.SocialRedirect, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SocialRedirect), args.Error(1)
}

func (m *MockAuthUsecase) SocialCallback(ctx context.Context, req usecase.SocialCallbackRequest, stateCookie string, meta usecase.RequestMeta) (*usecase.AuthResult, error) {
	args := m.Called(ctx, req, stateCookie, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResult), args.Error(1)
}
