package middleware

import (
	"net/http"
	"strings"

	"vetflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by TenantAuthMiddleware.
const (
	CtxTenantID = "tenantID"
	CtxRole     = "role"
)

// TenantAuthMiddleware requires a bearer JWT carrying a tenant_id claim.
func TenantAuthMiddleware(secret []byte, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ParseTenantClaims(secret, tokenString)
		if err != nil {
			logger.Debug("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(CtxTenantID, claims.TenantID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// TenantID returns the tenant set by TenantAuthMiddleware.
func TenantID(c *gin.Context) string {
	return c.GetString(CtxTenantID)
}
