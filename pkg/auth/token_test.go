package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "stockroom",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, Role: enums.UserRoleManager, JTI: "session-1"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleManager {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "session-1" {
		t.Fatalf("expected jti session-1, got %s", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 30*time.Minute {
		t.Fatalf("unexpected ttl %s", got)
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	token, err := MintAccessToken(testConfig(), time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleStaff})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(testConfig(), token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("expected uuid jti, got %q", claims.ID)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	cases := map[string]struct {
		cfg     config.JWTConfig
		payload AccessTokenPayload
	}{
		"missing secret": {config.JWTConfig{Issuer: "x", ExpirationMinutes: 1}, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin}},
		"missing issuer": {config.JWTConfig{Secret: "x", ExpirationMinutes: 1}, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin}},
		"bad expiry":     {config.JWTConfig{Secret: "x", Issuer: "x"}, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin}},
		"missing user":   {testConfig(), AccessTokenPayload{Role: enums.UserRoleAdmin}},
		"bad role":       {testConfig(), AccessTokenPayload{UserID: uuid.New(), Role: "owner"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := MintAccessToken(tc.cfg, time.Now(), tc.payload); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected signature error")
	}

	wrongIssuer := cfg
	wrongIssuer.Issuer = "elsewhere"
	if _, err := ParseAccessToken(wrongIssuer, token); err == nil {
		t.Fatalf("expected issuer error")
	}

	if _, err := ParseAccessToken(cfg, strings.TrimSuffix(token, token[len(token)-2:])); err == nil {
		t.Fatalf("expected error for truncated token")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected expired token error")
	}
}
