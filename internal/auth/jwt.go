package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/config"
)

// Claims are the token claims issued by the identity service
type Claims struct {
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator validates bearer tokens signed with the shared HS256 secret
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTValidator creates a validator from auth configuration
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// ValidateToken parses and verifies a token string and builds the user
// context from its claims
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("jwt secret not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	role := claims.Role
	if role == "" {
		role = RoleViewer
	}

	return &UserContext{
		UserID:      userID,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		Role:        role,
	}, nil
}
