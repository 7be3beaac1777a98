// auth.go implements HTTP handlers for email/password login and the current-user endpoint.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/auth"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/middleware"
)

// UserFinder loads accounts by email. *repositories.UserRepository satisfies it.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthHandlers handles authentication-related endpoints
type AuthHandlers struct {
	users     UserFinder
	jwtExpiry time.Duration
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(users UserFinder, jwtExpiry time.Duration) *AuthHandlers {
	return &AuthHandlers{users: users, jwtExpiry: jwtExpiry}
}

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler checks email and password against the stored bcrypt hash and
// returns a signed JWT.
// POST /api/v1/auth/login
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			slog.Error("login: failed to load user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to authenticate",
			})
			return
		}
		if user == nil || !auth.CheckPassword(user.Password, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password",
			})
			return
		}

		token, err := auth.GenerateJWT(user.ID, user.Email, auth.Role(user.Role), h.jwtExpiry)
		if err != nil {
			slog.Error("login: failed to sign token", "user_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to generate token",
			})
			return
		}

		expiresIn := h.jwtExpiry
		if expiresIn == 0 {
			expiresIn = time.Hour
		}
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"token_type": "Bearer",
			"expires_in": int(expiresIn.Seconds()),
			"user":       presentUser(user),
		})
	}
}

// MeHandler returns the authenticated user.
// GET /api/v1/auth/me
func (h *AuthHandlers) MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(middleware.UserKey)
		user, _ := v.(*models.User)
		if !ok || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Not authenticated",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": presentUser(user)})
	}
}
