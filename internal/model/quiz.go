package model

import "gorm.io/datatypes"

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	SubjectID   string         `gorm:"type:varchar(36);index;not null" json:"subject_id"`
	TotalMarks  int            `gorm:"not null" json:"total_marks"`
	TimeLimit   int            `gorm:"default:30" json:"time_limit"` // 分钟
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	Questions   []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion 题目单独建表，提交答案按题目 ID 对应
type QuizQuestion struct {
	UUIDBase
	QuizID        string                      `gorm:"type:varchar(36);index;not null" json:"quiz_id"`
	Order         int                         `gorm:"default:0" json:"order"`
	QuestionText  string                      `gorm:"type:text;not null" json:"question_text"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer int                         `json:"correct_answer"`
	Marks         int                         `gorm:"default:1" json:"marks"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// SumMarks 题目分值之和，理论上应等于 TotalMarks（不强制）
func (q *Quiz) SumMarks() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Marks
	}
	return total
}
