package repository

import (
	"context"
	"rural_lms_backend/internal/model"

	"gorm.io/gorm"
)

type SupportRepository struct {
	DB *gorm.DB
}

func NewSupportRepository(db *gorm.DB) *SupportRepository {
	return &SupportRepository{DB: db}
}

func (r *SupportRepository) Create(ctx context.Context, request *model.SupportRequest) error {
	return r.DB.WithContext(ctx).Create(request).Error
}

func (r *SupportRepository) FindByID(ctx context.Context, id string) (*model.SupportRequest, error) {
	var request model.SupportRequest
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (r *SupportRepository) Update(ctx context.Context, request *model.SupportRequest) error {
	return r.DB.WithContext(ctx).Save(request).Error
}

func (r *SupportRepository) FindByUser(ctx context.Context, userID string) ([]model.SupportRequest, error) {
	var requests []model.SupportRequest
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *SupportRepository) CountByUserAndStatus(ctx context.Context, userID string, status model.SupportStatus) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.SupportRequest{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

func (r *SupportRepository) CountByStatus(ctx context.Context, status model.SupportStatus) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.SupportRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// ListByStatus status 为空时返回全部
func (r *SupportRepository) ListByStatus(ctx context.Context, status model.SupportStatus) ([]model.SupportRequest, error) {
	var requests []model.SupportRequest
	query := r.DB.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&requests).Error
	return requests, err
}
