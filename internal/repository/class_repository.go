package repository

import (
	"context"
	"rural_lms_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(ctx context.Context, class *model.Class) error {
	return translate(r.DB.WithContext(ctx).Create(class).Error)
}

func (r *ClassRepository) FindByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&class).Error; err != nil {
		return nil, translate(err)
	}
	return &class, nil
}

func (r *ClassRepository) FindByName(ctx context.Context, name string) (*model.Class, error) {
	var class model.Class
	if err := r.DB.WithContext(ctx).Where("class_name = ?", name).First(&class).Error; err != nil {
		return nil, translate(err)
	}
	return &class, nil
}

func (r *ClassRepository) FindActiveByGradeLevel(ctx context.Context, gradeLevel int) (*model.Class, error) {
	var class model.Class
	err := r.DB.WithContext(ctx).
		Where("grade_level = ? AND is_active = ?", gradeLevel, true).
		Order("class_name ASC").
		First(&class).Error
	if err != nil {
		return nil, translate(err)
	}
	return &class, nil
}

func (r *ClassRepository) List(ctx context.Context, activeOnly bool) ([]model.Class, error) {
	var classes []model.Class
	query := r.DB.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("grade_level ASC, class_name ASC").Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) FindByTeacher(ctx context.Context, teacherID string) ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.WithContext(ctx).
		Where("teacher_id = ? AND is_active = ?", teacherID, true).
		Order("grade_level ASC, class_name ASC").
		Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Class{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
