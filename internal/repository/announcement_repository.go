package repository

import (
	"context"
	"rural_lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AnnouncementRepository struct {
	DB *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{DB: db}
}

func (r *AnnouncementRepository) Create(ctx context.Context, announcement *model.Announcement) error {
	return r.DB.WithContext(ctx).Create(announcement).Error
}

// FindActive 角色与班级的过滤交给 model.Announcement.VisibleTo，
// target_roles 是 JSON 列，不同数据库的 JSON 查询语法不一致
func (r *AnnouncementRepository) FindActive(ctx context.Context, now time.Time) ([]model.Announcement, error) {
	var announcements []model.Announcement
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Where("is_active = ? AND (expires_at IS NULL OR expires_at > ?)", true, now).
		Order("created_at DESC").
		Find(&announcements).Error
	return announcements, err
}

func (r *AnnouncementRepository) FindByAuthor(ctx context.Context, authorID string, limit int) ([]model.Announcement, error) {
	var announcements []model.Announcement
	err := r.DB.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&announcements).Error
	return announcements, err
}
