package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/eduverse/eduverse-api/model"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "test-issuer",
	})
}

func testUser() *model.User {
	return &model.User{
		ID:           42,
		Username:     "alice",
		TokenVersion: 3,
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := testManager()

	token, jti, err := m.GenerateAccessToken(testUser(), model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if jti == "" {
		t.Fatal("expected a JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Errorf("unexpected identity claims: %+v", claims)
	}
	if claims.Role != model.RoleStudent {
		t.Errorf("expected role student, got %s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("expected access token type, got %s", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("expected token version 3, got %d", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims ID %s does not match returned JTI %s", claims.ID, jti)
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := testManager()

	token, _, err := m.GenerateRefreshToken(testUser(), model.RoleTeacher)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("expected refresh token type, got %s", claims.TokenType)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := testManager()
	token, _, err := m.GenerateAccessToken(testUser(), model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	other := NewJWTManager(JWTConfig{Secret: "different-secret", Expiry: time.Minute})
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewJWTManager(JWTConfig{
		Secret: "test-secret",
		Expiry: -time.Minute,
	})

	token, _, err := m.GenerateAccessToken(testUser(), model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	m := testManager()
	if _, err := m.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGetTokenExpiry(t *testing.T) {
	m := testManager()
	token, _, err := m.GenerateAccessToken(testUser(), model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	expiry, err := m.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("GetTokenExpiry failed: %v", err)
	}

	want := time.Now().Add(15 * time.Minute)
	if diff := expiry.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiry %v too far from expected %v", expiry, want)
	}
}
