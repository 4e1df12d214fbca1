package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"rural_lms_backend/internal/config"
	"rural_lms_backend/internal/repository/memory"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	app *App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		Database:  config.DatabaseConfig{Driver: "memory"},
		JWT:       config.JWTConfig{Secret: "integration-secret", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Promotion: config.PromotionConfig{CompletionThreshold: 0.8, ArchiveProgress: true},
	}
	a := New(cfg, &Deps{
		Stores: memory.NewStores(memory.NewDB()),
		Cache:  memory.NewStatsCache(),
	})
	require.NoError(t, a.services.auth.EnsureAdmin(context.Background(), config.AdminConfig{
		Email:    "admin@school.test",
		Password: "admin-pass",
	}))
	return &testServer{t: t, app: a}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, status)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func (s *testServer) register(name, email, role string) string {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret1", "role": role,
	})
	require.Equal(s.t, http.StatusCreated, status, env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","components":{"database":"memory","cache":"disabled"}}`, string(env.Data))
}

func TestStudentEnrollmentFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@school.test", "admin-pass")
	student := s.register("Amina", "amina@school.test", "student")

	status, env := s.do(http.MethodGet, "/api/student/dashboard", student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `true`, string(mustField(t, env.Data, "needsClassSelection")))

	status, _ = s.do(http.MethodPost, "/api/admin/classes", admin, gin.H{"class_name": "Grade 1", "grade_level": 1})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(http.MethodPost, "/api/admin/classes", admin, gin.H{"class_name": "Grade 2", "grade_level": 2})
	require.Equal(t, http.StatusCreated, status)

	status, env = s.do(http.MethodPost, "/api/class/select", student, gin.H{"class_number": 1})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(http.MethodGet, "/api/student/dashboard", student, nil)
	require.Equal(t, http.StatusOK, status)
	var dashboard struct {
		Student struct {
			ClassName  string `json:"class_name"`
			GradeLevel int    `json:"grade_level"`
		} `json:"student"`
		Subjects []interface{} `json:"subjects"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	assert.Equal(t, "Grade 1", dashboard.Student.ClassName)
	assert.NotNil(t, dashboard.Subjects)

	var profile struct {
		ID string `json:"id"`
	}
	_, env = s.do(http.MethodGet, "/api/profile", student, nil)
	require.NoError(t, json.Unmarshal(env.Data, &profile))

	status, env = s.do(http.MethodPost, "/api/admin/promote", admin, gin.H{"studentId": profile.ID})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(http.MethodPost, "/api/admin/promote", admin, gin.H{"studentId": profile.ID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "no_higher_class", env.Reason)
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t)
	student := s.register("Amina", "amina@school.test", "student")
	teacher := s.register("Okafor", "okafor@school.test", "teacher")
	admin := s.login("admin@school.test", "admin-pass")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"no token", http.MethodGet, "/api/profile", "", http.StatusUnauthorized},
		{"student on admin route", http.MethodGet, "/api/admin/stats", student, http.StatusForbidden},
		{"teacher on student route", http.MethodGet, "/api/student/dashboard", teacher, http.StatusForbidden},
		{"admin on teacher dashboard", http.MethodGet, "/api/teacher/dashboard", admin, http.StatusForbidden},
		{"teacher dashboard", http.MethodGet, "/api/teacher/dashboard", teacher, http.StatusOK},
		{"admin stats", http.MethodGet, "/api/admin/stats", admin, http.StatusOK},
		{"classes for any role", http.MethodGet, "/api/classes", student, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := s.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_input", env.Reason)

	s.register("Amina", "amina@school.test", "student")
	status, env = s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Again", "email": "amina@school.test", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", env.Reason)

	status, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "amina@school.test", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", env.Reason)

	student := s.login("amina@school.test", "secret1")
	status, env = s.do(http.MethodPost, "/api/class/select", student, gin.H{"class_id": 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_input", env.Reason)
	assert.Equal(t, "class_id must be a string; use class_number for grade level", env.Message)
}

func TestApplyConfigReloadsPolicies(t *testing.T) {
	s := newTestServer(t)
	s.app.ApplyConfig(&config.Config{
		Enrollment: config.EnrollmentConfig{BootstrapAttendance: true},
		Promotion:  config.PromotionConfig{RequireCompletion: true, CompletionThreshold: 0.5},
	})

	assert.True(t, s.app.services.enrollment.Policy().BootstrapAttendance)
	assert.True(t, s.app.services.promotion.Policy().RequireCompletion)
	assert.Equal(t, 0.5, s.app.services.promotion.Policy().CompletionThreshold)
}

func TestAnnouncementStream(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@school.test", "admin-pass")
	student := s.register("Amina", "amina@school.test", "student")

	srv := httptest.NewServer(s.app.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/announcements/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": []string{"Bearer " + student}})
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.app.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	status, _ := s.do(http.MethodPost, "/api/announcements", admin, gin.H{
		"title": "Exams", "message": "Start Monday", "target_roles": []string{"student"},
	})
	require.Equal(t, http.StatusCreated, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string `json:"type"`
		Data struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "ANNOUNCEMENT", msg.Type)
	assert.Equal(t, "Exams", msg.Data.Title)
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	value, ok := fields[key]
	require.True(t, ok, "missing field %s", key)
	return value
}
