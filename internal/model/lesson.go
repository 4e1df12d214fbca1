package model

// swagger:model Lesson
type Lesson struct {
	UUIDBase
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Content     string `gorm:"type:text" json:"content"`
	SubjectID   string `gorm:"type:varchar(36);index;not null" json:"subject_id"`
	Order       int    `gorm:"default:0" json:"order"`
	Duration    int    `gorm:"default:30" json:"duration"` // 分钟
	MaterialURL string `gorm:"size:512" json:"material_url,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

func (Lesson) TableName() string {
	return "lessons"
}
