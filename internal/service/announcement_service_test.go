package service

import (
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncementTargeting(t *testing.T) {
	f := newFixture(t)
	teacher := f.user(t, "teacher", model.Teacher)
	student := f.student(t, "amina")
	outsider := f.student(t, "bako")
	class := f.class(t, "Grade 1", 1)
	f.enroll(t, student.ID, class.ID)

	svc := NewAnnouncementService(f.stores)
	svc.Clock = f.clock

	created, err := svc.Create(f.ctx, teacher.ID, CreateAnnouncementInput{Title: "Staff meeting", Message: "Friday", TargetRoles: []string{" Teacher ", "teacher"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher"}, []string(created.TargetRoles))

	_, err = svc.Create(f.ctx, teacher.ID, CreateAnnouncementInput{Title: "Grade 1 trip", Message: "Bring lunch", TargetRoles: []string{"teacher"}, ClassID: class.ID})
	require.NoError(t, err)

	everyone, err := svc.Create(f.ctx, teacher.ID, CreateAnnouncementInput{Title: "Holiday", Message: "School closed"})
	require.NoError(t, err)
	assert.Equal(t, []string{model.TargetAll}, []string(everyone.TargetRoles))

	titles := func(userID string) []string {
		views, err := svc.ListVisible(f.ctx, userID)
		require.NoError(t, err)
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Grade 1 trip", "Holiday"}, titles(student.ID))
	assert.ElementsMatch(t, []string{"Holiday"}, titles(outsider.ID))
	assert.ElementsMatch(t, []string{"Staff meeting", "Grade 1 trip", "Holiday"}, titles(teacher.ID))
}

func TestCreateAnnouncementValidation(t *testing.T) {
	f := newFixture(t)
	teacher := f.user(t, "teacher", model.Teacher)
	svc := NewAnnouncementService(f.stores)
	svc.Clock = f.clock
	past := f.now.Add(-time.Hour)

	_, err := svc.Create(f.ctx, teacher.ID, CreateAnnouncementInput{Title: "", Message: "m"})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.Create(f.ctx, teacher.ID, CreateAnnouncementInput{Title: "t", Message: "m", TargetRoles: []string{"parents"}})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.Create(f.ctx, teacher.ID, CreateAnnouncementInput{Title: "t", Message: "m", ExpiresAt: &past})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.Create(f.ctx, teacher.ID, CreateAnnouncementInput{Title: "t", Message: "m", ClassID: "missing"})
	assert.ErrorIs(t, err, util.ErrNotFound)
}
