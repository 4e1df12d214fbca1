package repository

import (
	"context"
	"rural_lms_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// Create 在一个事务中写入测验及其题目
func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(ascending("order", "created_at"))
		}).
		Where("id = ?", id).
		First(&quiz).Error
	if err != nil {
		return nil, translate(err)
	}
	return &quiz, nil
}

func (r *QuizRepository) FindBySubject(ctx context.Context, subjectID string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).
		Where("subject_id = ? AND is_active = ?", subjectID, true).
		Order("created_at ASC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Quiz{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
