package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// Claim keys carried by tenant tokens.
const (
	ClaimTenantID = "tenant_id"
	ClaimRole     = "role"

	RoleStaff = "staff"
	RoleAdmin = "admin"
)

var ErrMissingTenant = errors.New("token carries no tenant")

// TenantClaims is what a verified bearer token asserts.
type TenantClaims struct {
	TenantID string
	Role     string
	Subject  string
}

// GenerateToken signs an HS256 token for a tenant member. It is used by
// tests and tooling; tokens are normally issued by the identity service.
func GenerateToken(secret []byte, tenantID, subject, role string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         subject,
		ClaimTenantID: tenantID,
		ClaimRole:     role,
		"iat":         now.Unix(),
		"exp":         now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(secret []byte, tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
}

// ParseTenantClaims validates the token and extracts the tenant claims.
func ParseTenantClaims(secret []byte, tokenString string) (*TenantClaims, error) {
	token, err := ValidateToken(secret, tokenString)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	tenantID, _ := claims[ClaimTenantID].(string)
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	role, _ := claims[ClaimRole].(string)
	if role == "" {
		role = RoleStaff
	}
	subject, _ := claims["sub"].(string)
	return &TenantClaims{TenantID: tenantID, Role: role, Subject: subject}, nil
}
