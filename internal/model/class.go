package model

// Class 年级班级，grade_level 决定升班顺序
// swagger:model Class
type Class struct {
	UUIDBase
	ClassName  string  `gorm:"size:100;uniqueIndex;not null" json:"class_name"`
	GradeLevel int     `gorm:"index;not null" json:"grade_level"`
	TeacherID  *string `gorm:"type:varchar(36);index" json:"teacher_id,omitempty"`
	IsActive   bool    `gorm:"default:true" json:"is_active"`
}

func (Class) TableName() string {
	return "classes"
}
