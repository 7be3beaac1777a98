package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/auth"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// stubUsers is a UserLookup backed by a map.
type stubUsers struct {
	users map[int64]*models.User
	err   error
}

func (s stubUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[id], nil
}

var coordinador = &models.User{ID: 7, Name: "Coordinación", Email: "coord@tecnm.mx", Role: "coordinador"}

func newAuthRouter(users UserLookup) *gin.Engine {
	r := gin.New()
	r.GET("/", AuthMiddleware(users), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.MustGet(UserIDKey),
			"role":    c.MustGet(RoleKey),
		})
	})
	return r
}

func serveAuth(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func mustToken(t *testing.T, userID int64, role auth.Role) string {
	t.Helper()
	token, err := auth.GenerateJWT(userID, "coord@tecnm.mx", role, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return token
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	users := stubUsers{users: map[int64]*models.User{7: coordinador}}
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer   ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"unknown user", "Bearer " + mustToken(t, 99, auth.RoleAdmin), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveAuth(newAuthRouter(users), tt.header)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_LookupError(t *testing.T) {
	w := serveAuth(newAuthRouter(stubUsers{err: errors.New("db down")}), "Bearer "+mustToken(t, 7, auth.RoleCoordinador))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestAuthMiddleware_SetsIdentityFromStoredUser(t *testing.T) {
	users := stubUsers{users: map[int64]*models.User{7: coordinador}}
	// The token claims admin, but the stored account is coordinador.
	w := serveAuth(newAuthRouter(users), "Bearer "+mustToken(t, 7, auth.RoleAdmin))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if body := w.Body.String(); body != `{"role":"coordinador","user_id":7}` {
		t.Errorf("body = %s", body)
	}
}
