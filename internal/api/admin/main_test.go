package admin

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	// Set JWT secret for tests that exercise GenerateJWT (LoginHandler success path)
	os.Setenv("TECNM_JWT_SECRET", "test-admin-jwt-secret-that-is-32chars!!")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var errDB = &dbError{"database error"}

type dbError struct{ msg string }

func (e *dbError) Error() string { return e.msg }

func getJSON(resp *httptest.ResponseRecorder) map[string]interface{} {
	var m map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &m)
	return m
}
