package auth_test

import (
	"testing"
	"time"

	"lifeops/internal/auth/adapter/security"
	"lifeops/internal/auth/authctx"
	"lifeops/internal/auth/testutil"

	"golang.org/x/crypto/bcrypt"
)

func BenchmarkPasswordHashing(b *testing.B) {
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	for i := 0; i < b.N; i++ {
		if _, err := hasher.Hash("SuperSecurePassword123"); err != nil {
			b.Fatalf("bcrypt error: %v", err)
		}
	}
}

func BenchmarkPasswordVerify(b *testing.B) {
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	hash, err := hasher.Hash("SuperSecurePassword123")
	if err != nil {
		b.Fatalf("bcrypt error: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !hasher.Verify(hash, "SuperSecurePassword123") {
			b.Fatal("bcrypt verify failed")
		}
	}
}

func BenchmarkSessionCacheDecode(b *testing.B) {
	cache, err := security.NewJWTSessionCache(testutil.Config())
	if err != nil {
		b.Fatalf("cache error: %v", err)
	}
	identity := authctx.Identity{
		User:    authctx.AuthUser{ID: "user-1", Email: "bench@example.com", Name: "Bench"},
		Session: authctx.AuthSession{ID: "session-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
	}
	raw, err := cache.Encode(identity, "session-token")
	if err != nil {
		b.Fatalf("encode error: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cache.Decode(raw, "session-token"); err != nil {
			b.Fatalf("decode error: %v", err)
		}
	}
}

func BenchmarkTokenGeneration(b *testing.B) {
	gen := security.RandomTokenGenerator{}
	for i := 0; i < b.N; i++ {
		if _, err := gen.NewToken(); err != nil {
			b.Fatalf("token error: %v", err)
		}
	}
}
