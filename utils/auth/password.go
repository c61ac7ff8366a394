package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/eduverse/eduverse-api/utils/validation"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("password does not match")
)

// hashCost trades login latency for brute-force resistance.
const hashCost = 12

// HashPassword generates a bcrypt hash of the password. Password policy
// lives in utils/validation; the length floor here is a backstop so a
// handler that skips validation cannot store a weak credential.
func HashPassword(password string) (string, error) {
	if len(password) < validation.PasswordMinLength {
		return "", ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks the password against its stored hash.
func VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return err
	}
	return nil
}
