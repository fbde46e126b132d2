package security

import (
	"crypto/sha256"
	"encoding/base64"

	"lifeops/internal/auth/domain/repository"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher implements repository.PasswordHasher. Passwords are reduced to a
// base64 SHA-256 digest before bcrypt so inputs past bcrypt's 72-byte limit stay distinct.
type BcryptHasher struct {
	cost int
}

var _ repository.PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher; a cost outside bcrypt's range falls back to bcrypt.DefaultCost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
