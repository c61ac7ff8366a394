package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := VerifyPassword(hash, "correct-horse-battery"); err != nil {
		t.Errorf("expected password to verify: %v", err)
	}

	if err := VerifyPassword(hash, "wrong-password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if _, err := HashPassword("12345678"); err != nil {
		t.Fatalf("8 characters must hash: %v", err)
	}
}
