package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eduverse/eduverse-api/model"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	Expiry        time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// Claims represents JWT claims. Role is resolved from the user's profile at
// token issue time; the profile role is immutable, so the claim stays valid
// for the token's lifetime.
type Claims struct {
	UserID       uint       `json:"user_id"`
	Username     string     `json:"username"`
	Role         model.Role `json:"role"`
	TokenType    string     `json:"token_type"`    // "access" or "refresh"
	TokenVersion int        `json:"token_version"` // For invalidating all tokens
	jwt.RegisteredClaims
}

// JWTManager handles JWT token operations
type JWTManager struct {
	config JWTConfig
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{config: config}
}

func (j *JWTManager) generate(user *model.User, role model.Role, tokenType string, expiry time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.New().String()

	claims := Claims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         role,
		TokenType:    tokenType,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
			Subject:   user.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(j.config.Secret))
	return signedToken, jti, err
}

// GenerateAccessToken generates a new access token with JTI
func (j *JWTManager) GenerateAccessToken(user *model.User, role model.Role) (string, string, error) {
	return j.generate(user, role, "access", j.config.Expiry)
}

// GenerateRefreshToken generates a new refresh token with JTI
func (j *JWTManager) GenerateRefreshToken(user *model.User, role model.Role) (string, string, error) {
	return j.generate(user, role, "refresh", j.config.RefreshExpiry)
}

// AccessExpirySeconds returns the access token lifetime in seconds, for
// expires_in response fields.
func (j *JWTManager) AccessExpirySeconds() int {
	return int(j.config.Expiry.Seconds())
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(j.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// GetTokenExpiry returns the expiry time of a token without validating it,
// used when blacklisting a token that is being revoked.
func (j *JWTManager) GetTokenExpiry(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return time.Time{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidClaims
	}

	return claims.ExpiresAt.Time, nil
}
