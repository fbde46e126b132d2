package security

import (
	"testing"
	"time"

	"lifeops/internal/auth/authctx"
	"lifeops/internal/auth/config"
	"lifeops/internal/auth/domain/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JWTTestSuite struct {
	suite.Suite
	config *config.Config
	cache  *JWTSessionCache
	state  *JWTStateSigner
	now    time.Time
}

func (suite *JWTTestSuite) SetupTest() {
	suite.config = &config.Config{
		Secret:      "test-secret-key-32-characters-long-12345",
		CacheMaxAge: 5 * time.Minute,
		StateMaxAge: 10 * time.Minute,
	}
	suite.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cache, err := NewJWTSessionCache(suite.config)
	require.NoError(suite.T(), err)
	cache.now = suite.clock
	suite.cache = cache

	state, err := NewJWTStateSigner(suite.config)
	require.NoError(suite.T(), err)
	state.now = suite.clock
	suite.state = state
}

func (suite *JWTTestSuite) clock() time.Time { return suite.now }

func (suite *JWTTestSuite) identity(expiresAt time.Time) authctx.Identity {
	return authctx.Identity{
		User:    authctx.AuthUser{ID: "user-123", Email: "test@example.com", Name: "Test", EmailVerified: true},
		Session: authctx.AuthSession{ID: "session-1", UserID: "user-123", ExpiresAt: expiresAt},
	}
}

func (suite *JWTTestSuite) TestNewJWTSessionCache_ValidationErrors() {
	testCases := []struct {
		name         string
		modifyConfig func(*config.Config)
		expectedErr  string
	}{
		{
			name:         "empty secret key",
			modifyConfig: func(cfg *config.Config) { cfg.Secret = "" },
			expectedErr:  "auth secret cannot be empty",
		},
		{
			name:         "zero max age",
			modifyConfig: func(cfg *config.Config) { cfg.CacheMaxAge = 0 },
			expectedErr:  "session cache max age must be positive",
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			cfg := *suite.config
			tc.modifyConfig(&cfg)

			cache, err := NewJWTSessionCache(&cfg)

			assert.Error(suite.T(), err)
			assert.Nil(suite.T(), cache)
			assert.Contains(suite.T(), err.Error(), tc.expectedErr)
		})
	}
}

func (suite *JWTTestSuite) TestEncodeDecode_RoundTrip() {
	identity := suite.identity(suite.now.Add(7 * 24 * time.Hour))

	raw, err := suite.cache.Encode(identity, "session-token")
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), raw)

	decoded, err := suite.cache.Decode(raw, "session-token")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), identity.User, decoded.User)
	assert.Equal(suite.T(), identity.Session.ID, decoded.Session.ID)
	assert.True(suite.T(), identity.Session.ExpiresAt.Equal(decoded.Session.ExpiresAt))
}

func (suite *JWTTestSuite) TestDecode_OtherSessionToken() {
	raw, err := suite.cache.Encode(suite.identity(suite.now.Add(time.Hour)), "session-token")
	require.NoError(suite.T(), err)

	_, err = suite.cache.Decode(raw, "another-token")
	assert.ErrorIs(suite.T(), err, ErrTokenMismatch)

	_, err = suite.cache.Decode(raw, "")
	assert.ErrorIs(suite.T(), err, ErrTokenMismatch)
}

func (suite *JWTTestSuite) TestDecode_Expired() {
	raw, err := suite.cache.Encode(suite.identity(suite.now.Add(time.Hour)), "session-token")
	require.NoError(suite.T(), err)

	suite.now = suite.now.Add(6 * time.Minute)
	_, err = suite.cache.Decode(raw, "session-token")
	assert.ErrorIs(suite.T(), err, ErrTokenExpired)
}

func (suite *JWTTestSuite) TestEncode_NeverOutlivesSession() {
	raw, err := suite.cache.Encode(suite.identity(suite.now.Add(time.Minute)), "session-token")
	require.NoError(suite.T(), err)

	suite.now = suite.now.Add(2 * time.Minute)
	_, err = suite.cache.Decode(raw, "session-token")
	assert.ErrorIs(suite.T(), err, ErrTokenExpired)
}

func (suite *JWTTestSuite) TestDecode_WrongSecret() {
	cfg := *suite.config
	cfg.Secret = "another-secret-key-32-characters-long-123"
	other, err := NewJWTSessionCache(&cfg)
	require.NoError(suite.T(), err)
	other.now = suite.clock

	raw, err := other.Encode(suite.identity(suite.now.Add(time.Hour)), "session-token")
	require.NoError(suite.T(), err)

	_, err = suite.cache.Decode(raw, "session-token")
	assert.ErrorIs(suite.T(), err, ErrTokenSignatureInvalid)
}

func (suite *JWTTestSuite) TestDecode_RejectsOtherAlgorithms() {
	claims := &SessionClaims{RegisteredClaims: suite.cache.registered(cacheAudience, time.Minute)}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(suite.config.Secret))
	require.NoError(suite.T(), err)

	identity, err := suite.cache.Decode(raw, "session-token")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), identity)
}

func (suite *JWTTestSuite) TestDecode_Malformed() {
	_, err := suite.cache.Decode("not-a-jwt", "session-token")
	assert.ErrorIs(suite.T(), err, ErrTokenInvalid)

	_, err = suite.cache.Decode("", "session-token")
	assert.ErrorIs(suite.T(), err, ErrTokenInvalid)
}

func (suite *JWTTestSuite) TestState_RoundTrip() {
	raw, err := suite.state.SignState(repository.OAuthState{State: "abc", CallbackURL: "/dashboard"})
	require.NoError(suite.T(), err)

	state, err := suite.state.VerifyState(raw)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "abc", state.State)
	assert.Equal(suite.T(), "/dashboard", state.CallbackURL)
}

func (suite *JWTTestSuite) TestState_Expired() {
	raw, err := suite.state.SignState(repository.OAuthState{State: "abc"})
	require.NoError(suite.T(), err)

	suite.now = suite.now.Add(11 * time.Minute)
	_, err = suite.state.VerifyState(raw)
	assert.ErrorIs(suite.T(), err, ErrTokenExpired)
}

func (suite *JWTTestSuite) TestState_NotInterchangeableWithCache() {
	raw, err := suite.cache.Encode(suite.identity(suite.now.Add(time.Hour)), "session-token")
	require.NoError(suite.T(), err)

	_, err = suite.state.VerifyState(raw)
	assert.ErrorIs(suite.T(), err, ErrTokenInvalid)
}

func TestJWTTestSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}
