package model

import (
	"time"

	"gorm.io/datatypes"
)

// TargetAll 面向所有角色
const TargetAll = "all"

// swagger:model Announcement
type Announcement struct {
	UUIDBase
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Message     string                      `gorm:"type:text;not null" json:"message"`
	AuthorID    string                      `gorm:"type:varchar(36);index;not null" json:"author_id"`
	Author      *User                       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	TargetRoles datatypes.JSONSlice[string] `json:"target_roles"`
	ClassID     *string                     `gorm:"type:varchar(36);index" json:"class_id,omitempty"`
	IsActive    bool                        `gorm:"default:true" json:"is_active"`
	ExpiresAt   *time.Time                  `json:"expires_at,omitempty"`
}

func (Announcement) TableName() string {
	return "announcements"
}

// Live 启用且未过期；没有过期时间视为永不过期
func (a *Announcement) Live(now time.Time) bool {
	return a.IsActive && (a.ExpiresAt == nil || a.ExpiresAt.After(now))
}

// VisibleTo 判断公告对某角色 / 班级是否可见
func (a *Announcement) VisibleTo(role UserRole, classID string, now time.Time) bool {
	if !a.Live(now) {
		return false
	}
	for _, target := range a.TargetRoles {
		if target == TargetAll || target == string(role) {
			return true
		}
	}
	return classID != "" && a.ClassID != nil && *a.ClassID == classID
}
