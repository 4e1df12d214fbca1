package middleware

import (
	"net/http"
	"net/http/httptest"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/any", func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserFromContext(c).UserID)
	})
	r.GET("/admin", RoleMiddleware(model.Admin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/staff", RoleMiddleware(model.Teacher, model.Admin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func tokenFor(t *testing.T, role model.UserRole, secret string) string {
	t.Helper()
	user := &model.User{Role: role}
	user.ID = model.GenerateUUID()
	token, err := util.GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)
	return token
}

func do(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", tokenFor(t, model.Student, testSecret), http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + tokenFor(t, model.Student, "other"), http.StatusUnauthorized},
		{"valid", "Bearer " + tokenFor(t, model.Student, testSecret), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(r, "/any", tt.header).Code)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer "+tokenFor(t, model.Teacher, testSecret)).Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", "Bearer "+tokenFor(t, model.Admin, testSecret)).Code)
	assert.Equal(t, http.StatusOK, do(r, "/staff", "Bearer "+tokenFor(t, model.Teacher, testSecret)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/staff", "Bearer "+tokenFor(t, model.Student, testSecret)).Code)
}

func TestStreamAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/stream", StreamAuthMiddleware(testSecret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	token := tokenFor(t, model.Student, testSecret)

	assert.Equal(t, http.StatusOK, do(r, "/stream?token="+token, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "/stream", "Bearer "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/stream", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/stream?token=garbage", "").Code)

	// 普通接口不接受 query token
	assert.Equal(t, http.StatusUnauthorized, do(newRouter(), "/any?token="+token, "").Code)
}
