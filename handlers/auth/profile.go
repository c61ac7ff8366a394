package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/eduverse/eduverse-api/services"
	"github.com/eduverse/eduverse-api/utils/middleware"
	"github.com/eduverse/eduverse-api/utils/response"
	"github.com/eduverse/eduverse-api/utils/validation"
)

// ProfileResponse represents the account plus its profile fields.
type ProfileResponse struct {
	User        UserResponse `json:"user"`
	Bio         string       `json:"bio"`
	PhoneNumber string       `json:"phone_number"`
	Address     string       `json:"address"`
	Grade       string       `json:"grade,omitempty"`
	PictureKey  string       `json:"picture_key,omitempty"`
}

// GetProfile returns the authenticated user's profile.
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	profile, err := h.accounts.GetProfile(c.Context(), user.ID)
	if err != nil {
		if errors.Is(err, services.ErrProfileMissing) {
			return response.InternalServerError(c, "Account state is inconsistent")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, ProfileResponse{
		User: UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      profile.Role,
			CreatedAt: user.CreatedAt,
		},
		Bio:         profile.Bio,
		PhoneNumber: profile.PhoneNumber,
		Address:     profile.Address,
		Grade:       profile.Grade,
		PictureKey:  profile.PictureKey,
	})
}

// UpdateProfileRequest carries owner-editable fields. Role is absent on
// purpose; it cannot change after registration.
type UpdateProfileRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Address     *string `json:"address,omitempty"`
	Grade       *string `json:"grade,omitempty"`
}

// UpdateProfile applies partial edits to the caller's own profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.FullName != nil {
		sanitized := validation.SanitizeString(*req.FullName)
		if len(sanitized) < 2 {
			return response.ValidationError(c, map[string]string{"full_name": "Full name must be at least 2 characters"})
		}
		req.FullName = &sanitized
	}

	profile, err := h.accounts.UpdateProfile(c.Context(), user.ID, services.UpdateProfileInput{
		FullName:    req.FullName,
		Bio:         req.Bio,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Grade:       req.Grade,
	})
	if err != nil {
		if errors.Is(err, services.ErrProfileMissing) {
			return response.InternalServerError(c, "Account state is inconsistent")
		}
		return response.InternalServerError(c, "Failed to update profile")
	}

	fullName := user.FullName
	if req.FullName != nil {
		fullName = *req.FullName
	}

	return response.Success(c, ProfileResponse{
		User: UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FullName:  fullName,
			Role:      profile.Role,
			CreatedAt: user.CreatedAt,
		},
		Bio:         profile.Bio,
		PhoneNumber: profile.PhoneNumber,
		Address:     profile.Address,
		Grade:       profile.Grade,
		PictureKey:  profile.PictureKey,
	})
}

// ChangePasswordRequest carries a password change request.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword rotates the password and invalidates every issued token.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if ok, msgs := validation.ValidatePassword(req.NewPassword); !ok {
		return response.ValidationError(c, map[string]string{"new_password": strings.Join(msgs, "; ")})
	}

	if err := h.accounts.ChangePassword(c.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return response.Unauthorized(c, "Current password is incorrect")
		}
		return response.InternalServerError(c, "Failed to change password")
	}

	return response.SuccessWithMessage(c, "Password changed. Please sign in again.", nil)
}

// DeleteAccount removes the caller's account. Owned content goes with it.
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if err := h.accounts.DeleteAccount(c.Context(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to delete account")
	}

	return response.NoContent(c)
}
