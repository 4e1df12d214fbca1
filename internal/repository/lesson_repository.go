package repository

import (
	"context"
	"rural_lms_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).Create(lesson).Error
}

func (r *LessonRepository) FindByID(ctx context.Context, id string) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&lesson).Error; err != nil {
		return nil, translate(err)
	}
	return &lesson, nil
}

func (r *LessonRepository) Update(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).Save(lesson).Error
}

func (r *LessonRepository) FindBySubjects(ctx context.Context, subjectIDs []string) ([]model.Lesson, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	var lessons []model.Lesson
	err := r.DB.WithContext(ctx).
		Where("subject_id IN ? AND is_active = ?", subjectIDs, true).
		Order(ascending("subject_id", "order")).
		Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
