package util

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"rural_lms_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"invalid input", NewError(ErrInvalidInput, "bad"), http.StatusBadRequest, "invalid_input"},
		{"not found", ErrClassNotFound, http.StatusNotFound, "not_found"},
		{"forbidden", ErrNotAttemptOwner, http.StatusForbidden, "forbidden"},
		{"unauthorized", ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"conflict", ErrEmailRegistered, http.StatusConflict, "conflict"},
		{"not enrolled", ErrStudentNotEnrolled, http.StatusBadRequest, "not_enrolled"},
		{"no higher class", ErrNoHigherClassFound, http.StatusBadRequest, "no_higher_class"},
		{"promotion blocked", ErrRequirementsUnmet, http.StatusBadRequest, "promotion_blocked"},
		{"wrapped", fmt.Errorf("enroll: %w", ErrStudentNotFound), http.StatusNotFound, "not_found"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reason := Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestErrorMessageAndKind(t *testing.T) {
	err := NewError(ErrConflict, "class name already exists")
	assert.Equal(t, "class name already exists", err.Error())
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 0, Percent(3, 0))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 33, Percent(5, 15))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(4, 4))
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(model.GenerateUUID()))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("grade-3"))
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Role: model.Teacher}
	user.ID = model.GenerateUUID()

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)
}

func TestParseJWTRejects(t *testing.T) {
	user := &model.User{Role: model.Student}
	user.ID = model.GenerateUUID()

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateJWT(user, "secret-a", time.Hour)
		require.NoError(t, err)
		_, err = ParseJWT(token, "secret-b")
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateJWT(user, "secret-a", -time.Minute)
		require.NoError(t, err)
		_, err = ParseJWT(token, "secret-a")
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseJWT("not-a-token", "secret-a")
		assert.Error(t, err)
	})
}

func TestSniffContentTypeKeepsBody(t *testing.T) {
	content := []byte("%PDF-1.4\n" + string(bytes.Repeat([]byte("x"), 1024)))

	mimeType, body, err := SniffContentType(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mimeType)

	all, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, content, all)
}

func TestValidateMaterialType(t *testing.T) {
	mimeType, body, err := ValidateMaterialType(bytes.NewReader([]byte("plain lesson notes")))
	require.NoError(t, err)
	assert.Contains(t, mimeType, "text/plain")
	all, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "plain lesson notes", string(all))

	_, _, err = ValidateMaterialType(bytes.NewReader([]byte("<html><body>hi</body></html>")))
	assert.ErrorIs(t, err, ErrInvalidFileType)
}
