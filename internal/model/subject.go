package model

// swagger:model Subject
type Subject struct {
	UUIDBase
	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	ClassID     string  `gorm:"type:varchar(36);index;not null" json:"class_id"`
	TeacherID   *string `gorm:"type:varchar(36);index" json:"teacher_id,omitempty"`
	Order       int     `gorm:"default:0" json:"order"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
}

func (Subject) TableName() string {
	return "subjects"
}
