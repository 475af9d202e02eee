package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

func principalFrom(c *gin.Context) *identity.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*identity.Principal); ok {
			return p
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	// Browsers cannot set headers on a WebSocket handshake.
	return c.Query("access_token")
}

// AuthMiddleware verifies the bearer token and stores the resolved principal
// in the gin context.
func AuthMiddleware(resolver *identity.Resolver, verifier identity.TokenVerifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := resolver.Authenticate(c.Request.Context(), verifier, bearerToken(c))
		if err != nil {
			respondAuthError(c, logger, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RoleMiddleware rejects callers whose role is not listed. Services repeat
// the check; this only keeps whole route groups closed.
func RoleMiddleware(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFrom(c)
		for _, role := range roles {
			if principal.Is(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Code:    "FORBIDDEN",
		})
	}
}

func respondAuthError(c *gin.Context, logger utils.Logger, err error) {
	switch {
	case errors.Is(err, identity.ErrMissingToken), errors.Is(err, identity.ErrInvalidToken):
		logger.Warn("Authentication failed", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
			Code:    "UNAUTHENTICATED",
		})
	case errors.Is(err, identity.ErrUnknownAccount):
		logger.Warn("Authentication failed", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Account not found",
			Code:    "ACCOUNT_NOT_FOUND",
		})
	default:
		logger.LogError(err, "Failed to resolve caller", "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusBadGateway, ErrorResponse{
			Message: "Storage backend unavailable",
			Code:    "BACKEND_UNAVAILABLE",
		})
	}
}
