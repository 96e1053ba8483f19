package middleware

import (
	"net/http"
	"strings"

	"guesthouse-backend/models"
	"guesthouse-backend/services"
	"guesthouse-backend/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// extractToken strips the "Bearer " prefix of an Authorization header.
func extractToken(authHeader string) string {
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(authHeader)
}

// Auth rejects requests without a valid access token and stores the
// caller's id and role on the context.
func Auth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortJSONError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required")
			return
		}

		claims, err := tokens.Parse(extractToken(authHeader))
		if err != nil {
			utils.AbortJSONError(c, http.StatusUnauthorized, services.ErrInvalidToken.Code, services.ErrInvalidToken.Message)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, models.UserRole(claims.Role))
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != models.RoleAdmin {
			utils.AbortJSONError(c, http.StatusForbidden, services.ErrForbidden.Code, "Only admins can perform this action")
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

func Role(c *gin.Context) models.UserRole {
	if v, ok := c.Get(ContextRole); ok {
		if r, ok := v.(models.UserRole); ok {
			return r
		}
	}
	return ""
}

// Actor is the caller as the services see it.
func Actor(c *gin.Context) services.Actor {
	return services.Actor{UserID: UserID(c), Role: Role(c)}
}
