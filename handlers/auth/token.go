package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/utils/middleware"
	"github.com/eduverse/eduverse-api/utils/response"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken handles token refresh. The old refresh token is blacklisted
// so each one can be redeemed once.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}

	if claims.TokenType != "refresh" {
		return response.Unauthorized(c, "Invalid token type")
	}

	isRevoked, err := h.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		return response.Unauthorized(c, "User not found")
	}

	if user.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been invalidated")
	}

	role, err := h.accounts.ResolveRole(c.Context(), user.ID)
	if err != nil {
		return response.InternalServerError(c, "Account state is inconsistent")
	}

	newAccessToken, _, err := h.jwtManager.GenerateAccessToken(&user, role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	newRefreshToken, _, err := h.jwtManager.GenerateRefreshToken(&user, role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	// Blacklist old refresh token. A failure here is tolerable; the old
	// token still expires naturally.
	expiresAt, _ := h.jwtManager.GetTokenExpiry(req.RefreshToken)
	_ = h.blacklistService.RevokeToken(c.Context(), claims.ID, user.ID, expiresAt, "token_refresh")

	return response.Success(c, TokenPairResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    h.jwtManager.AccessExpirySeconds(),
	})
}

// revokeCurrentToken blacklists the access token of the current request.
// It writes no response; callers map the error.
func (h *AuthHandler) revokeCurrentToken(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return errNotAuthenticated
	}

	jti, ok := middleware.GetTokenJTI(c)
	if !ok {
		return errNoTokenID
	}

	authHeader := c.Get("Authorization")
	tokenString := ""
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenString = authHeader[7:]
	}

	expiresAt := time.Now().Add(24 * time.Hour) // Default expiry
	if tokenString != "" {
		if exp, err := h.jwtManager.GetTokenExpiry(tokenString); err == nil {
			expiresAt = exp
		}
	}

	return h.blacklistService.RevokeToken(c.Context(), jti, user.ID, expiresAt, "logout")
}

var (
	errNotAuthenticated = errors.New("not authenticated")
	errNoTokenID        = errors.New("no token id in context")
)

func (h *AuthHandler) respondLogoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errNotAuthenticated):
		return response.Unauthorized(c, "Not authenticated")
	case errors.Is(err, errNoTokenID):
		return response.BadRequest(c, "No token ID found")
	default:
		return response.InternalServerError(c, "Failed to revoke token")
	}
}

// Logout blacklists the current access token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.revokeCurrentToken(c); err != nil {
		return h.respondLogoutError(c, err)
	}
	return response.SuccessWithMessage(c, "Logged out", fiber.Map{
		"redirect_to": "/",
	})
}

// LogoutAndRedirect is the page-flow variant: revoke, then send the client
// home.
func (h *AuthHandler) LogoutAndRedirect(c *fiber.Ctx) error {
	if err := h.revokeCurrentToken(c); err != nil {
		return h.respondLogoutError(c, err)
	}
	return response.Redirect(c, "/")
}
