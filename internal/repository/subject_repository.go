package repository

import (
	"context"
	"rural_lms_backend/internal/model"

	"gorm.io/gorm"
)

type SubjectRepository struct {
	DB *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: db}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	return r.DB.WithContext(ctx).Create(subject).Error
}

func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&subject).Error; err != nil {
		return nil, translate(err)
	}
	return &subject, nil
}

func (r *SubjectRepository) FindByClass(ctx context.Context, classID string, activeOnly bool) ([]model.Subject, error) {
	var subjects []model.Subject
	query := r.DB.WithContext(ctx).Where("class_id = ?", classID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order(ascending("order", "name")).Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Subject{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
