package repository

import (
	"context"
	"rural_lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.DB.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return translate(r.DB.WithContext(ctx).Save(user).Error)
}

// SetClass 只更新班级字段，并发写入时后写者生效
func (r *UserRepository) SetClass(ctx context.Context, userID string, classID *string) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("class_id", classID).Error
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login", at).Error
}

func (r *UserRepository) CountByRole(ctx context.Context, role model.UserRole) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *UserRepository) FindByClass(ctx context.Context, classID string, role model.UserRole) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Where("class_id = ? AND role = ?", classID, role).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) CountByClasses(ctx context.Context, classIDs []string, role model.UserRole) (int64, error) {
	if len(classIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("class_id IN ? AND role = ?", classIDs, role).
		Count(&count).Error
	return count, err
}

// Recent 最近注册的用户
func (r *UserRepository) Recent(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&users).Error
	return users, err
}

// RecentLogins 最近登录过的用户
func (r *UserRepository) RecentLogins(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Where("last_login IS NOT NULL").
		Order("last_login DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
