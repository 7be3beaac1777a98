// Package middleware (rbac.go) implements role-based authorization middleware.
// The role is read from the context populated by AuthMiddleware.

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/auth"
)

// RequireRole allows the request when the authenticated user holds at least one
// of roles. Admin satisfies every role.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	required := strings.Join(names, ", ")

	return func(c *gin.Context) {
		roleVal, exists := c.Get(RoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			return
		}

		role, ok := roleVal.(auth.Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Invalid role format",
			})
			return
		}

		if !auth.HasAnyRole(role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Missing required role",
				"details": "Required role: " + required,
			})
			return
		}

		c.Next()
	}
}
