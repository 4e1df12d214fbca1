package repository

import (
	"context"
	"rural_lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository struct {
	DB *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

func (r *AttendanceRepository) Upsert(ctx context.Context, record *model.Attendance) error {
	record.Date = model.DateOnly(record.Date)
	db := r.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"class_id", "status", "remarks", "is_initial", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return err
	}
	var stored model.Attendance
	if err := db.Where("student_id = ? AND date = ?", record.StudentID, record.Date).First(&stored).Error; err != nil {
		return translate(err)
	}
	*record = stored
	return nil
}

func (r *AttendanceRepository) FindByStudent(ctx context.Context, studentID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&records).Error
	return records, err
}
