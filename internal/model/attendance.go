package model

import "time"

type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
	Excused AttendanceStatus = "excused"
)

// Attendance 每个学生每天一条
// swagger:model Attendance
type Attendance struct {
	UUIDBase
	StudentID string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_attendance_student_date" json:"student_id"`
	Date      time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_student_date" json:"date"`
	ClassID   *string          `gorm:"type:varchar(36);index" json:"class_id,omitempty"`
	Status    AttendanceStatus `gorm:"size:20;default:'absent'" json:"status"`
	Remarks   string           `gorm:"size:255" json:"remarks,omitempty"`
	IsInitial bool             `gorm:"default:false" json:"is_initial"`
}

func (Attendance) TableName() string {
	return "attendance"
}

// DateOnly 截断到当天零点
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay 按各自时区的年月日比较
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
