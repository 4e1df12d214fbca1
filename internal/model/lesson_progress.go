package model

import "time"

type ProgressStatus string

const (
	NotStarted ProgressStatus = "not_started"
	InProgress ProgressStatus = "in_progress"
	Completed  ProgressStatus = "completed"
)

// LessonProgress 每个学生每节课至多一条
type LessonProgress struct {
	UUIDBase
	StudentID          string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_student_lesson" json:"student_id"`
	LessonID           string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_student_lesson" json:"lesson_id"`
	Status             ProgressStatus `gorm:"size:20;default:'not_started'" json:"status"`
	ProgressPercentage int            `gorm:"default:0" json:"progress_percentage"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	LastAccessed       time.Time      `json:"last_accessed"`
	IsArchived         bool           `gorm:"default:false" json:"is_archived"`
	ArchivedAt         *time.Time     `json:"archived_at,omitempty"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// MarkCompleted 完成时进度固定为 100
func (p *LessonProgress) MarkCompleted(at time.Time) {
	p.Status = Completed
	p.ProgressPercentage = 100
	p.CompletedAt = &at
	p.LastAccessed = at
}
