package service

import (
	"context"
	"errors"
	"net/mail"
	"rural_lms_backend/internal/config"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
	"rural_lms_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type AuthService struct {
	Users repository.UserStore
	Cfg   *config.Config
	Clock Clock
}

func NewAuthService(users repository.UserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		Users: users,
		Cfg:   cfg,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.UserRole
}

// AuthResult 注册 / 登录的返回
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return util.NewError(util.ErrInvalidInput, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return util.NewError(util.ErrInvalidInput, "email is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return util.NewError(util.ErrInvalidInput, "password must be at least 6 characters")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, util.NewError(util.ErrInvalidInput, "name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = model.Student
	}
	// 管理员只能通过配置创建
	if role != model.Student && role != model.Teacher {
		return nil, util.NewError(util.ErrInvalidInput, "role must be student or teacher")
	}

	_, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("User registered", zap.String("userId", user.ID), zap.String("role", string(user.Role)))
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, util.NewError(util.ErrInvalidInput, "email and password are required")
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, orNotFound(err, util.ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	now := s.Clock.now()
	if err := s.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Log.Warn("Failed to record last login", zap.String("userId", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, util.ErrUserNotFound)
	}
	return user, nil
}

// ProfileInput 为空的字段保持不变
type ProfileInput struct {
	Name     string
	Email    string
	Password string
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}
	if in.Password != "" {
		if err := validatePassword(in.Password); err != nil {
			return nil, err
		}
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, util.ErrUserNotFound)
	}

	if email != "" && email != user.Email {
		existing, err := s.Users.FindByEmail(ctx, email)
		if err == nil && existing.ID != user.ID {
			return nil, util.ErrEmailRegistered
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Email = email
	}
	if name != "" {
		user.Name = name
	}
	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	if err := s.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin 配置了管理员账号且该邮箱不存在时创建
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	email := normalizeEmail(cfg.Email)
	if email == "" || cfg.Password == "" {
		return nil
	}

	_, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	name := cfg.Name
	if name == "" {
		name = "Administrator"
	}
	admin := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     model.Admin,
	}
	if err := s.Users.Create(ctx, admin); err != nil {
		return err
	}
	logger.Log.Info("Admin account created", zap.String("email", email))
	return nil
}
