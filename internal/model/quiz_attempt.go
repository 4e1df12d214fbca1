package model

import (
	"time"

	"gorm.io/datatypes"
)

// AttemptAnswer 提交后每题的评分明细
type AttemptAnswer struct {
	QuestionID     string `json:"question_id"`
	QuestionIndex  int    `json:"question_index"`
	SelectedAnswer int    `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`
	CorrectAnswer  int    `json:"correct_answer"`
	Marks          int    `json:"marks"`
}

// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	StudentID   string                             `gorm:"type:varchar(36);index;not null" json:"student_id"`
	QuizID      string                             `gorm:"type:varchar(36);index;not null" json:"quiz_id"`
	TotalMarks  int                                `gorm:"not null" json:"total_marks"`
	Score       int                                `gorm:"default:0" json:"score"`
	Percentage  int                                `gorm:"default:0" json:"percentage"`
	TimeTaken   int                                `json:"time_taken"` // 秒
	Answers     datatypes.JSONSlice[AttemptAnswer] `json:"answers"`
	CompletedAt *time.Time                         `json:"completed_at,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
