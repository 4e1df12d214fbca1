package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnnouncementVisibleTo(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	classA := "class-a"

	tests := []struct {
		name    string
		a       Announcement
		role    UserRole
		classID string
		want    bool
	}{
		{"all roles", Announcement{TargetRoles: []string{TargetAll}, IsActive: true}, Student, "", true},
		{"matching role", Announcement{TargetRoles: []string{"teacher"}, IsActive: true}, Teacher, "", true},
		{"other role", Announcement{TargetRoles: []string{"teacher"}, IsActive: true}, Student, "", false},
		{"class match", Announcement{TargetRoles: []string{"teacher"}, ClassID: &classA, IsActive: true}, Student, classA, true},
		{"class mismatch", Announcement{TargetRoles: []string{"teacher"}, ClassID: &classA, IsActive: true}, Student, "class-b", false},
		{"inactive", Announcement{TargetRoles: []string{TargetAll}}, Student, "", false},
		{"expired", Announcement{TargetRoles: []string{TargetAll}, IsActive: true, ExpiresAt: &past}, Admin, "", false},
		{"not yet expired", Announcement{TargetRoles: []string{TargetAll}, IsActive: true, ExpiresAt: &future}, Admin, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.VisibleTo(tt.role, tt.classID, now))
		})
	}
}

func TestMarkCompleted(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	p := &LessonProgress{Status: InProgress, ProgressPercentage: 40}
	p.MarkCompleted(at)

	assert.Equal(t, Completed, p.Status)
	assert.Equal(t, 100, p.ProgressPercentage)
	if assert.NotNil(t, p.CompletedAt) {
		assert.Equal(t, at, *p.CompletedAt)
	}
	assert.Equal(t, at, p.LastAccessed)
}

func TestQuizSumMarks(t *testing.T) {
	q := Quiz{Questions: []QuizQuestion{{Marks: 5}, {Marks: 10}}}
	assert.Equal(t, 15, q.SumMarks())
}
