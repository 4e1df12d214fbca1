package model

import "time"

type SupportStatus string

const (
	SupportOpen       SupportStatus = "open"
	SupportInProgress SupportStatus = "in_progress"
	SupportResolved   SupportStatus = "resolved"
	SupportClosed     SupportStatus = "closed"
)

// swagger:model SupportRequest
type SupportRequest struct {
	UUIDBase
	UserID          string        `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Title           string        `gorm:"size:255;not null" json:"title"`
	Description     string        `gorm:"type:text;not null" json:"description"`
	Category        string        `gorm:"size:20;default:'other'" json:"category"`
	Status          SupportStatus `gorm:"size:20;index;default:'open'" json:"status"`
	Priority        string        `gorm:"size:20;default:'medium'" json:"priority"`
	ResolutionNotes string        `gorm:"type:text" json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time    `json:"resolved_at,omitempty"`
}

func (SupportRequest) TableName() string {
	return "support_requests"
}
