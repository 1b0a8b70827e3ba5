package jwt

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken(42, "driver", AccessToken, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "driver" || claims.TokenType != AccessToken {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := GenerateToken(1, "user", AccessToken, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateExpired(t *testing.T) {
	token, err := GenerateToken(1, "user", AccessToken, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ValidateToken(token, testSecret); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestGeneratePair(t *testing.T) {
	pair, err := GeneratePair(7, "conductor", testSecret, time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("GeneratePair failed: %v", err)
	}

	access, err := ValidateToken(pair.Access, testSecret)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if access.TokenType != AccessToken {
		t.Fatalf("expected access type, got %s", access.TokenType)
	}

	refresh, err := ValidateToken(pair.Refresh, testSecret)
	if err != nil {
		t.Fatalf("refresh token invalid: %v", err)
	}
	if refresh.TokenType != RefreshToken {
		t.Fatalf("expected refresh type, got %s", refresh.TokenType)
	}
}
