package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/utils/auth"
	"github.com/eduverse/eduverse-api/utils/response"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// authenticate validates the bearer token on the request and, on success,
// loads the user and stores auth info in the request context. It returns a
// non-empty failure message otherwise.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "Missing authorization token", nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "Invalid authorization format", nil
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		if err == auth.ErrExpiredToken {
			return "Token has expired", nil
		}
		return "Invalid token", nil
	}

	if claims.TokenType != "access" {
		return "Invalid token type", nil
	}

	isRevoked, err := m.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return "", err
	}
	if isRevoked {
		return "Token has been revoked", nil
	}

	var user model.User
	if err := m.db.First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "User not found", nil
		}
		return "", err
	}

	if user.TokenVersion != claims.TokenVersion {
		return "Token has been invalidated", nil
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("user_role", claims.Role)
	c.Locals("claims", claims)
	c.Locals("user", &user)
	c.Locals("token_jti", claims.ID)

	return "", nil
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		msg, err := m.authenticate(c)
		if err != nil {
			return response.InternalServerError(c, "Failed to check token status")
		}
		if msg != "" {
			return response.Unauthorized(c, msg)
		}
		return c.Next()
	}
}

// Optional authenticates when a token is present but lets anonymous
// requests through. The home route dispatches on whatever it finds.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") != "" {
			if _, err := m.authenticate(c); err != nil {
				return response.InternalServerError(c, "Failed to check token status")
			}
		}
		return c.Next()
	}
}

// RequireRole is middleware for API routes that requires a specific role on
// an already authenticated request.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := GetUserRole(c)
		if !ok {
			return response.Forbidden(c, "Access denied")
		}

		for _, r := range roles {
			if userRole == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// RequireDashboard guards the role-specific dashboard routes. Dispatch rules:
// unauthenticated requests go to the login page, authenticated requests with
// the wrong role go home. It runs on every dashboard request, so a teacher
// navigating straight to the student route is still turned away.
func (m *AuthMiddleware) RequireDashboard(role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		msg, err := m.authenticate(c)
		if err != nil {
			return response.InternalServerError(c, "Failed to check token status")
		}
		if msg != "" {
			return response.Redirect(c, "/login/")
		}

		userRole, ok := GetUserRole(c)
		if !ok || userRole != role {
			return response.Redirect(c, "/")
		}

		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *fiber.Ctx) (model.Role, bool) {
	role := c.Locals("user_role")
	if role == nil {
		return "", false
	}
	r, ok := role.(model.Role)
	return r, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti := c.Locals("token_jti")
	if jti == nil {
		return "", false
	}
	j, ok := jti.(string)
	return j, ok
}
