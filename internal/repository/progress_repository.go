package repository

import (
	"context"
	"rural_lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 以 (student_id, lesson_id) 为键写入进度，写入后回读已存在行的 id
func (r *ProgressRepository) Upsert(ctx context.Context, progress *model.LessonProgress) error {
	db := r.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "progress_percentage", "completed_at", "last_accessed", "is_archived", "archived_at", "updated_at",
		}),
	}).Create(progress).Error
	if err != nil {
		return err
	}
	// 冲突时 progress.ID 是新生成的 uuid，回读到新值，避免 gorm 追加 id 条件
	var stored model.LessonProgress
	if err := db.Where("student_id = ? AND lesson_id = ?", progress.StudentID, progress.LessonID).First(&stored).Error; err != nil {
		return translate(err)
	}
	*progress = stored
	return nil
}

func (r *ProgressRepository) Find(ctx context.Context, studentID, lessonID string) (*model.LessonProgress, error) {
	var progress model.LessonProgress
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		First(&progress).Error
	if err != nil {
		return nil, translate(err)
	}
	return &progress, nil
}

// CountCompleted 统计指定课时中已完成的数量，已归档的记录不计入
func (r *ProgressRepository) CountCompleted(ctx context.Context, studentID string, lessonIDs []string) (int64, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("student_id = ? AND lesson_id IN ? AND status = ? AND is_archived = ?",
			studentID, lessonIDs, model.Completed, false).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CompletedLessonIDs(ctx context.Context, studentID string, lessonIDs []string) ([]string, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("student_id = ? AND lesson_id IN ? AND status = ? AND is_archived = ?",
			studentID, lessonIDs, model.Completed, false).
		Pluck("lesson_id", &ids).Error
	return ids, err
}

func (r *ProgressRepository) CountAllCompleted(ctx context.Context, studentID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("student_id = ? AND status = ? AND is_archived = ?", studentID, model.Completed, false).
		Count(&count).Error
	return count, err
}

// ArchiveByStudent 标记归档，不删除历史进度
func (r *ProgressRepository) ArchiveByStudent(ctx context.Context, studentID string, at time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("student_id = ? AND is_archived = ?", studentID, false).
		Updates(map[string]interface{}{"is_archived": true, "archived_at": at})
	return result.RowsAffected, result.Error
}
