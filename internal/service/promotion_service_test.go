package service

import (
	"rural_lms_backend/internal/config"
	"rural_lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromotion(f *fixture, policy config.PromotionConfig) *PromotionService {
	svc := NewPromotionService(f.stores, newEnrollment(f, false), policy)
	svc.Clock = f.clock
	return svc
}

func TestPromoteToNextGrade(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "amina")
	grade1 := f.class(t, "Grade 1", 1)
	grade2 := f.class(t, "Grade 2", 2)
	f.enroll(t, student.ID, grade1.ID)
	f.complete(t, student.ID, f.lesson(t, f.subject(t, grade1.ID, "Maths", 1).ID, "Counting", 1).ID)

	svc := newPromotion(f, config.PromotionConfig{ArchiveProgress: true, CompletionThreshold: 0.8})
	result, err := svc.Promote(f.ctx, student.ID)
	require.NoError(t, err)

	assert.Equal(t, grade1.ID, result.FromClass.ID)
	assert.Equal(t, grade2.ID, result.ToClass.ID)
	assert.EqualValues(t, 1, result.ArchivedRecords)
	assert.Equal(t, f.now, result.PromotedAt)

	stored, err := f.stores.Users.FindByID(f.ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, stored.InClass(grade2.ID))
}

func TestPromoteFailures(t *testing.T) {
	f := newFixture(t)
	svc := newPromotion(f, config.PromotionConfig{})

	unenrolled := f.student(t, "unenrolled")
	_, err := svc.Promote(f.ctx, unenrolled.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	top := f.student(t, "top")
	f.enroll(t, top.ID, f.class(t, "Grade 6", 6).ID)
	_, err = svc.Promote(f.ctx, top.ID)
	assert.ErrorIs(t, err, util.ErrNoHigherClass)

	dangling := f.student(t, "dangling")
	f.enroll(t, dangling.ID, "deleted-class")
	_, err = svc.Promote(f.ctx, dangling.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	_, err = svc.Promote(f.ctx, "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = svc.Promote(f.ctx, "")
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestPromoteCompletionGate(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "amina")
	grade1 := f.class(t, "Grade 1", 1)
	f.class(t, "Grade 2", 2)
	f.enroll(t, student.ID, grade1.ID)
	subject := f.subject(t, grade1.ID, "Maths", 1)
	first := f.lesson(t, subject.ID, "Counting", 1)
	second := f.lesson(t, subject.ID, "Adding", 2)
	f.complete(t, student.ID, first.ID)

	svc := newPromotion(f, config.PromotionConfig{RequireCompletion: true, CompletionThreshold: 0.8})
	_, err := svc.Promote(f.ctx, student.ID)
	assert.ErrorIs(t, err, util.ErrPromotionBlocked)

	svc.SetPolicy(config.PromotionConfig{RequireCompletion: true, CompletionThreshold: 0.5})
	assert.Equal(t, 0.5, svc.Policy().CompletionThreshold)

	f.complete(t, student.ID, second.ID)
	svc.SetPolicy(config.PromotionConfig{RequireCompletion: true, CompletionThreshold: 1})
	result, err := svc.Promote(f.ctx, student.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.ArchivedRecords)
}
