package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"lifeops/internal/auth/authctx"
	"lifeops/internal/auth/config"
	"lifeops/internal/auth/domain/repository"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenMismatch         = errors.New("token is bound to another session")
)

const (
	issuer        = "lifeops"
	cacheAudience = "session-cache"
	stateAudience = "oauth-state"
)

// SessionClaims is the payload of the session cache cookie
type SessionClaims struct {
	Session   authctx.AuthSession `json:"session"`
	User      authctx.AuthUser    `json:"user"`
	TokenHash string              `json:"th"`
	jwt.RegisteredClaims
}

// StateClaims is the payload of the OAuth state cookie
type StateClaims struct {
	State       string `json:"state"`
	CallbackURL string `json:"callbackURL,omitempty"`
	jwt.RegisteredClaims
}

// signer holds what both cookie codecs share
type signer struct {
	secretKey []byte
	now       func() time.Time
}

func newSigner(cfg *config.Config) (signer, error) {
	if cfg.Secret == "" {
		return signer{}, errors.New("auth secret cannot be empty")
	}
	return signer{secretKey: []byte(cfg.Secret), now: time.Now}, nil
}

func (s signer) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

func (s signer) parse(raw, audience string, claims jwt.Claims) error {
	if raw == "" {
		return ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return ErrTokenSignatureInvalid
		default:
			return ErrTokenInvalid
		}
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}

func (s signer) registered(audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// JWTSessionCache implements repository.SessionCache with HS256 tokens
type JWTSessionCache struct {
	signer
	maxAge time.Duration
}

var _ repository.SessionCache = (*JWTSessionCache)(nil)

// NewJWTSessionCache creates the session snapshot codec
func NewJWTSessionCache(cfg *config.Config) (*JWTSessionCache, error) {
	s, err := newSigner(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge <= 0 {
		return nil, errors.New("session cache max age must be positive")
	}
	return &JWTSessionCache{signer: s, maxAge: cfg.CacheMaxAge}, nil
}

// Encode signs a snapshot of identity bound to sessionToken. It never
// outlives the session itself.
func (c *JWTSessionCache) Encode(identity authctx.Identity, sessionToken string) (string, error) {
	registered := c.registered(cacheAudience, c.maxAge)
	registered.Subject = identity.User.ID
	if exp := identity.Session.ExpiresAt; !exp.IsZero() && exp.Before(registered.ExpiresAt.Time) {
		registered.ExpiresAt = jwt.NewNumericDate(exp)
	}

	return c.sign(&SessionClaims{
		Session:          identity.Session,
		User:             identity.User,
		TokenHash:        hashToken(sessionToken),
		RegisteredClaims: registered,
	})
}

// Decode verifies raw and returns the snapshot it carries
func (c *JWTSessionCache) Decode(raw, sessionToken string) (*authctx.Identity, error) {
	claims := &SessionClaims{}
	if err := c.parse(raw, cacheAudience, claims); err != nil {
		return nil, err
	}
	if sessionToken == "" || subtle.ConstantTimeCompare([]byte(claims.TokenHash), []byte(hashToken(sessionToken))) != 1 {
		return nil, ErrTokenMismatch
	}
	return &authctx.Identity{User: claims.User, Session: claims.Session}, nil
}

// JWTStateSigner implements repository.StateSigner with HS256 tokens
type JWTStateSigner struct {
	signer
	maxAge time.Duration
}

var _ repository.StateSigner = (*JWTStateSigner)(nil)

// NewJWTStateSigner creates the OAuth state codec
func NewJWTStateSigner(cfg *config.Config) (*JWTStateSigner, error) {
	s, err := newSigner(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.StateMaxAge <= 0 {
		return nil, errors.New("oauth state max age must be positive")
	}
	return &JWTStateSigner{signer: s, maxAge: cfg.StateMaxAge}, nil
}

func (s *JWTStateSigner) SignState(state repository.OAuthState) (string, error) {
	return s.sign(&StateClaims{
		State:            state.State,
		CallbackURL:      state.CallbackURL,
		RegisteredClaims: s.registered(stateAudience, s.maxAge),
	})
}

func (s *JWTStateSigner) VerifyState(raw string) (*repository.OAuthState, error) {
	claims := &StateClaims{}
	if err := s.parse(raw, stateAudience, claims); err != nil {
		return nil, err
	}
	if claims.State == "" {
		return nil, ErrTokenInvalid
	}
	return &repository.OAuthState{State: claims.State, CallbackURL: claims.CallbackURL}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
