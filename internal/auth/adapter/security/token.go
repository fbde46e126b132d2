package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"lifeops/internal/auth/domain/repository"
)

const tokenBytes = 32

// RandomTokenGenerator creates url-safe session tokens from crypto/rand
type RandomTokenGenerator struct{}

var _ repository.TokenGenerator = RandomTokenGenerator{}

func (RandomTokenGenerator) NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
