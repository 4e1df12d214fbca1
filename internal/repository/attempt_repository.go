package repository

import (
	"context"
	"rural_lms_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.QuizAttempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		return nil, translate(err)
	}
	return &attempt, nil
}

// Save 整行覆盖，重复提交以最后一次为准
func (r *AttemptRepository) Save(ctx context.Context, attempt *model.QuizAttempt) error {
	return r.DB.WithContext(ctx).Save(attempt).Error
}

func (r *AttemptRepository) FindByStudent(ctx context.Context, studentID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}
