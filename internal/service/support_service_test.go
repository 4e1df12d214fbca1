package service

import (
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportLifecycle(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "amina")
	svc := NewSupportService(f.stores.Support)
	svc.Clock = f.clock

	request, err := svc.Create(f.ctx, student.ID, CreateSupportInput{Title: "Video will not load", Description: "Lesson 3 stalls"})
	require.NoError(t, err)
	assert.Equal(t, "other", request.Category)
	assert.Equal(t, "medium", request.Priority)
	assert.Equal(t, model.SupportOpen, request.Status)

	_, err = svc.Create(f.ctx, student.ID, CreateSupportInput{Title: "t", Description: "d", Priority: "whenever"})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	resolved, err := svc.UpdateStatus(f.ctx, request.ID, "RESOLVED", "cleared cache")
	require.NoError(t, err)
	assert.Equal(t, model.SupportResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, f.now, *resolved.ResolvedAt)
	assert.Equal(t, "cleared cache", resolved.ResolutionNotes)

	open, err := svc.List(f.ctx, "open")
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := svc.List(f.ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	mine, err := svc.ListMine(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.UpdateStatus(f.ctx, request.ID, "done", "")
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.UpdateStatus(f.ctx, "missing", "closed", "")
	assert.ErrorIs(t, err, util.ErrNotFound)
}
