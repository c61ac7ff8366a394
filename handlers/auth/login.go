package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/services"
	"github.com/eduverse/eduverse-api/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	User        UserResponse `json:"user"`
	RedirectTo  string       `json:"redirect_to"`
	TokenPairResponse
}

// Login handles user login. A failed attempt returns an explicit message
// instead of silently re-rendering.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return response.BadRequest(c, "Username and password are required")
	}

	ip := c.IP()

	user, err := h.accounts.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			if h.bruteForceProtection != nil {
				h.bruteForceProtection.RecordFailure(c, ip)
			}
			return response.Unauthorized(c, "Invalid username or password")
		}
		return response.InternalServerError(c, "Failed to sign in")
	}

	role, err := h.accounts.ResolveRole(c.Context(), user.ID)
	if err != nil {
		// A user without a profile is corrupt state, not a login failure.
		return response.InternalServerError(c, "Account state is inconsistent")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccess(c, ip)
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user, role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user, role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	redirectTo := "/student-dashboard/"
	if role == model.RoleTeacher {
		redirectTo = "/teacher-dashboard/"
	}

	res := LoginResponse{
		User: UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      role,
			CreatedAt: user.CreatedAt,
		},
		RedirectTo: redirectTo,
		TokenPairResponse: TokenPairResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    h.jwtManager.AccessExpirySeconds(),
		},
	}

	return response.Success(c, res)
}
