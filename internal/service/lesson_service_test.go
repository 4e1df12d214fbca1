package service

import (
	"bytes"
	"os"
	"path/filepath"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonProgressNeverDowngrades(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "amina")
	class := f.class(t, "Grade 1", 1)
	lesson := f.lesson(t, f.subject(t, class.ID, "Maths", 1).ID, "Counting", 1)

	svc := NewLessonService(f.stores, &LocalStorageProvider{Root: t.TempDir()})
	svc.Clock = f.clock

	view, err := svc.GetLesson(f.ctx, student.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotStarted, view.Progress.Status)
	assert.Equal(t, 0, view.Progress.ProgressPercentage)
	require.NotNil(t, view.Lesson.Subject)
	assert.Equal(t, "Maths", view.Lesson.Subject.Name)

	progress, err := svc.UpdateProgress(f.ctx, student.ID, lesson.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, model.InProgress, progress.Status)
	assert.Equal(t, 40, progress.ProgressPercentage)

	progress, err = svc.CompleteLesson(f.ctx, student.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Completed, progress.Status)

	progress, err = svc.UpdateProgress(f.ctx, student.ID, lesson.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, model.Completed, progress.Status)
	assert.Equal(t, 100, progress.ProgressPercentage)

	view, err = svc.GetLesson(f.ctx, student.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Completed, view.Progress.Status)
	assert.NotNil(t, view.Progress.CompletedAt)
}

func TestUpdateProgressToHundredCompletes(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "amina")
	lesson := f.lesson(t, f.subject(t, f.class(t, "Grade 1", 1).ID, "Maths", 1).ID, "Counting", 1)
	svc := NewLessonService(f.stores, nil)
	svc.Clock = f.clock

	progress, err := svc.UpdateProgress(f.ctx, student.ID, lesson.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, model.Completed, progress.Status)

	_, err = svc.UpdateProgress(f.ctx, student.ID, lesson.ID, 101)
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.UpdateProgress(f.ctx, student.ID, "missing", 10)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestInactiveLessonIsHidden(t *testing.T) {
	f := newFixture(t)
	lesson := &model.Lesson{Title: "Draft", SubjectID: "s"}
	require.NoError(t, f.stores.Lessons.Create(f.ctx, lesson))
	svc := NewLessonService(f.stores, nil)

	_, err := svc.GetLesson(f.ctx, "student", lesson.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = svc.CompleteLesson(f.ctx, "student", lesson.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestUploadMaterial(t *testing.T) {
	f := newFixture(t)
	lesson := f.lesson(t, "subject", "Counting", 1)
	root := t.TempDir()
	svc := NewLessonService(f.stores, &LocalStorageProvider{Root: root})
	svc.Clock = f.clock

	content := []byte("count from one to ten")
	updated, err := svc.UploadMaterial(f.ctx, lesson.ID, "notes.TXT", bytes.NewReader(content), int64(len(content)), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.MaterialURL, "/uploads/lessons/"+lesson.ID+"/"))
	assert.True(t, strings.HasSuffix(updated.MaterialURL, ".txt"))

	objectName := strings.TrimPrefix(updated.MaterialURL, "/uploads/")
	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(objectName)))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	saved, err := f.stores.Lessons.FindByID(f.ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.MaterialURL, saved.MaterialURL)
}

func TestUploadMaterialRejects(t *testing.T) {
	f := newFixture(t)
	lesson := f.lesson(t, "subject", "Counting", 1)
	svc := NewLessonService(f.stores, &LocalStorageProvider{Root: t.TempDir()})

	html := []byte("<html><body>not a lesson</body></html>")
	tests := []struct {
		name     string
		lessonID string
		filename string
		body     []byte
		size     int64
		kind     error
	}{
		{"empty", lesson.ID, "a.txt", nil, 0, util.ErrInvalidInput},
		{"too large", lesson.ID, "a.txt", []byte("x"), util.MaxMaterialSize + 1, util.ErrInvalidInput},
		{"extension", lesson.ID, "a.exe", []byte("x"), 1, util.ErrInvalidInput},
		{"content", lesson.ID, "a.txt", html, int64(len(html)), util.ErrInvalidInput},
		{"missing lesson", "missing", "a.txt", []byte("x"), 1, util.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadMaterial(f.ctx, tt.lessonID, tt.filename, bytes.NewReader(tt.body), tt.size, "")
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
