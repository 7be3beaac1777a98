// Package middleware provides Gin HTTP middleware for authentication, authorization,
// rate limiting, request correlation and metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	RequestID → Metrics → Logger → CORS → RateLimit → Auth → Actor → RequireRole → Handler
//
// Rate limiting runs before auth to block brute-force attacks before any DB work.
// Auth populates the user identity and role; Actor turns that identity into the
// audit.Actor that repositories pass to the audit interceptor.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/auth"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// Context keys set by AuthMiddleware.
const (
	UserKey   = "user"
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// UserLookup loads the account named by a token. *repositories.UserRepository
// satisfies it.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware validates the bearer JWT and loads its user. The role is taken
// from the stored account so a demotion applies without reissuing tokens.
func AuthMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		claims, err := auth.ValidateJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load user",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "User not found",
			})
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(RoleKey, auth.Role(user.Role))

		c.Next()
	}
}
