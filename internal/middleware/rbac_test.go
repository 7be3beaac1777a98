package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/auth"
)

// newRoleRouter sets c[RoleKey] to role (if non-nil) before running mid.
func newRoleRouter(mid gin.HandlerFunc, role interface{}) *gin.Engine {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		if role != nil {
			c.Set(RoleKey, role)
		}
	}, mid, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func do(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRole(t *testing.T) {
	writers := RequireRole(auth.Writers...)
	tests := []struct {
		name string
		role interface{}
		want int
	}{
		{"no role in context", nil, http.StatusForbidden},
		{"wrong type in context", "admin", http.StatusForbidden},
		{"docente cannot write", auth.RoleDocente, http.StatusForbidden},
		{"coordinador can write", auth.RoleCoordinador, http.StatusOK},
		{"admin can write", auth.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(newRoleRouter(writers, tt.role)); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequireRole_AdminOnly(t *testing.T) {
	mid := RequireRole(auth.RoleAdmin)
	if w := do(newRoleRouter(mid, auth.RoleCoordinador)); w.Code != http.StatusForbidden {
		t.Errorf("coordinador status = %d, want 403", w.Code)
	}
	if w := do(newRoleRouter(mid, auth.RoleAdmin)); w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}
}
