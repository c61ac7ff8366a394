package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// PasswordMinLength is the minimum password length
	PasswordMinLength = 8
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationErrors converts validation errors to field-level messages
// suitable for the registration form.
func FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			field := strings.ToLower(e.Field())
			switch e.Tag() {
			case "required":
				errors[field] = fmt.Sprintf("%s is required", e.Field())
			case "email":
				errors[field] = "Invalid email format"
			case "min":
				errors[field] = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
			case "max":
				errors[field] = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
			case "oneof":
				errors[field] = fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
			default:
				errors[field] = fmt.Sprintf("%s is invalid", e.Field())
			}
		}
	}

	return errors
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) (bool, string) {
	if len(username) < 3 {
		return false, "Username must be at least 3 characters"
	}
	if len(username) > 30 {
		return false, "Username must be at most 30 characters"
	}
	if !usernameRegex.MatchString(username) {
		return false, "Username can only contain letters, numbers, underscores, and hyphens"
	}
	return true, ""
}

// ValidatePassword checks if a password meets minimum requirements
func ValidatePassword(password string) (bool, []string) {
	errors := []string{}

	if len(password) < PasswordMinLength {
		errors = append(errors, fmt.Sprintf("Password must be at least %d characters", PasswordMinLength))
	}

	hasLetter := false
	for _, char := range password {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		errors = append(errors, "Password must contain at least one letter")
	}

	return len(errors) == 0, errors
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.TrimSpace(s)
	return s
}
