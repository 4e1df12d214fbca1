package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIPLimiter(t *testing.T) {
	limiter := NewIPLimiter(2, time.Minute)
	now := time.Now()

	assert.True(t, limiter.Allow("10.0.0.1", now))
	assert.True(t, limiter.Allow("10.0.0.1", now))
	assert.False(t, limiter.Allow("10.0.0.1", now))
	assert.True(t, limiter.Allow("10.0.0.2", now))

	// 半个窗口后恢复一个令牌
	assert.True(t, limiter.Allow("10.0.0.1", now.Add(30*time.Second)))

	limiter.Sweep(now.Add(10 * time.Minute))
	limiter.mu.Lock()
	assert.Empty(t, limiter.visitors)
	limiter.mu.Unlock()
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://school.example.org/"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://school.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://school.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
