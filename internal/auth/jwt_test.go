package auth

import (
	"context"
	"testing"
	"time"

	"lingolink/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecretKey: "test-secret",
		JWTExpiry:    time.Minute,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testAuthConfig()

	token, err := GenerateToken(42, "mika", cfg)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := ValidateToken(context.Background(), token, cfg.JWTSecretKey, nil)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "mika" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected a JTI to be set")
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	cfg := testAuthConfig()

	token, err := GenerateToken(1, "mika", cfg)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := ValidateToken(context.Background(), token, "another-secret", nil); err == nil {
		t.Fatalf("expected validation to fail with wrong key")
	}
}

type fakeBlacklist struct {
	revoked map[string]bool
}

func (f *fakeBlacklist) Add(_ context.Context, jti string, _ time.Time) error {
	f.revoked[jti] = true
	return nil
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

func TestValidateTokenRevoked(t *testing.T) {
	cfg := testAuthConfig()
	bl := &fakeBlacklist{revoked: map[string]bool{}}

	token, err := GenerateToken(1, "mika", cfg)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := ValidateToken(context.Background(), token, cfg.JWTSecretKey, bl)
	if err != nil {
		t.Fatalf("validate before revocation: %v", err)
	}

	if err := bl.Add(context.Background(), claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("add to blacklist: %v", err)
	}
	if _, err := ValidateToken(context.Background(), token, cfg.JWTSecretKey, bl); err == nil {
		t.Fatalf("expected revoked token to be rejected")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Fatalf("expected password to match its hash")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatalf("expected mismatched password to fail")
	}
}
