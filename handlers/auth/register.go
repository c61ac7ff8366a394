package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/services"
	authutil "github.com/eduverse/eduverse-api/utils/auth"
	"github.com/eduverse/eduverse-api/utils/middleware"
	"github.com/eduverse/eduverse-api/utils/response"
	"github.com/eduverse/eduverse-api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	accounts             *services.AccountService
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		accounts:             services.NewAccountService(db),
		validator:            validation.NewValidator(),
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=30"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required,min=2"`
	Email       string `json:"email" validate:"omitempty,email"`
	Role        string `json:"role" validate:"required,oneof=student teacher"`
	Bio         string `json:"bio,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	Grade       string `json:"grade,omitempty"`
}

// TokenPairResponse carries the issued tokens.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // in seconds
}

// RegisterResponse represents a successful registration response. No tokens
// are issued here; a new account signs in through the login flow.
type RegisterResponse struct {
	User       UserResponse `json:"user"`
	RedirectTo string       `json:"redirect_to"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// Register handles user registration. The user and its profile are created
// together; a failure of either leaves nothing behind.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if ok, msg := validation.ValidateUsername(req.Username); !ok {
		return response.ValidationError(c, map[string]string{"username": msg})
	}

	if ok, msgs := validation.ValidatePassword(req.Password); !ok {
		return response.ValidationError(c, map[string]string{"password": strings.Join(msgs, "; ")})
	}

	user, err := h.accounts.Register(c.Context(), services.RegisterInput{
		Username:    validation.SanitizeString(req.Username),
		Password:    req.Password,
		Email:       validation.SanitizeString(req.Email),
		FullName:    validation.SanitizeString(req.FullName),
		Role:        model.Role(req.Role),
		Bio:         validation.SanitizeString(req.Bio),
		PhoneNumber: validation.SanitizeString(req.PhoneNumber),
		Address:     validation.SanitizeString(req.Address),
		Grade:       validation.SanitizeString(req.Grade),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			return response.Conflict(c, "Username already taken")
		case errors.Is(err, services.ErrInvalidRole):
			return response.ValidationError(c, map[string]string{"role": "Role must be 'student' or 'teacher'"})
		default:
			return response.InternalServerError(c, "Failed to create account")
		}
	}

	res := RegisterResponse{
		User: UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      user.Profile.Role,
			CreatedAt: user.CreatedAt,
		},
		RedirectTo: "/login/",
	}

	return response.Created(c, res)
}
