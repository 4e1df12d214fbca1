package service

import (
	"rural_lms_backend/internal/config"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(f *fixture) *AuthService {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}
	svc := NewAuthService(f.stores.Users, cfg)
	svc.Clock = f.clock
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)

	registered, err := svc.Register(f.ctx, RegisterInput{Name: "Amina", Email: " Amina@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.Student, registered.User.Role)
	assert.Equal(t, "amina@example.com", registered.User.Email)
	assert.NotEqual(t, "secret1", registered.User.Password)

	claims, err := util.ParseJWT(registered.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	_, err = svc.Register(f.ctx, RegisterInput{Name: "Other", Email: "AMINA@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, util.ErrConflict)

	loggedIn, err := svc.Login(f.ctx, "amina@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, loggedIn.User.LastLogin)
	assert.Equal(t, f.now, *loggedIn.User.LastLogin)

	_, err = svc.Login(f.ctx, "amina@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	_, err = svc.Login(f.ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"blank name", RegisterInput{Name: " ", Email: "a@example.com", Password: "secret1"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "123"}},
		{"admin role", RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1", Role: model.Admin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(f.ctx, tt.in)
			assert.ErrorIs(t, err, util.ErrInvalidInput)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)
	first, err := svc.Register(f.ctx, RegisterInput{Name: "Amina", Email: "amina@example.com", Password: "secret1", Role: model.Teacher})
	require.NoError(t, err)
	_, err = svc.Register(f.ctx, RegisterInput{Name: "Bako", Email: "bako@example.com", Password: "secret1"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(f.ctx, first.User.ID, ProfileInput{Name: "Amina K."})
	require.NoError(t, err)
	assert.Equal(t, "Amina K.", updated.Name)
	assert.Equal(t, "amina@example.com", updated.Email)

	_, err = svc.UpdateProfile(f.ctx, first.User.ID, ProfileInput{Email: "bako@example.com"})
	assert.ErrorIs(t, err, util.ErrConflict)

	_, err = svc.UpdateProfile(f.ctx, first.User.ID, ProfileInput{Password: "newsecret"})
	require.NoError(t, err)
	_, err = svc.Login(f.ctx, "amina@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f)
	admin := config.AdminConfig{Email: "Admin@example.com", Password: "adminpass"}

	require.NoError(t, svc.EnsureAdmin(f.ctx, admin))
	require.NoError(t, svc.EnsureAdmin(f.ctx, admin))

	count, err := f.stores.Users.CountByRole(f.ctx, model.Admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	user, err := f.stores.Users.FindByEmail(f.ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Administrator", user.Name)

	assert.NoError(t, svc.EnsureAdmin(f.ctx, config.AdminConfig{}))
}
