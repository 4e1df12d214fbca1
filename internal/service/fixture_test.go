package service

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/repository/memory"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx    context.Context
	stores *repository.Stores
	now    time.Time
	clock  Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	return &fixture{
		ctx:    context.Background(),
		stores: memory.NewStores(memory.NewDB()),
		now:    now,
		clock:  func() time.Time { return now },
	}
}

func (f *fixture) user(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, f.stores.Users.Create(f.ctx, user))
	return user
}

func (f *fixture) student(t *testing.T, name string) *model.User {
	return f.user(t, name, model.Student)
}

func (f *fixture) class(t *testing.T, name string, gradeLevel int) *model.Class {
	t.Helper()
	class := &model.Class{ClassName: name, GradeLevel: gradeLevel, IsActive: true}
	require.NoError(t, f.stores.Classes.Create(f.ctx, class))
	return class
}

func (f *fixture) subject(t *testing.T, classID, name string, order int) *model.Subject {
	t.Helper()
	subject := &model.Subject{Name: name, ClassID: classID, Order: order, IsActive: true}
	require.NoError(t, f.stores.Subjects.Create(f.ctx, subject))
	return subject
}

func (f *fixture) lesson(t *testing.T, subjectID, title string, order int) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{Title: title, SubjectID: subjectID, Order: order, Duration: 30, IsActive: true}
	require.NoError(t, f.stores.Lessons.Create(f.ctx, lesson))
	return lesson
}

func (f *fixture) enroll(t *testing.T, studentID, classID string) {
	t.Helper()
	require.NoError(t, f.stores.Users.SetClass(f.ctx, studentID, &classID))
}

func (f *fixture) complete(t *testing.T, studentID, lessonID string) {
	t.Helper()
	progress := &model.LessonProgress{StudentID: studentID, LessonID: lessonID}
	progress.MarkCompleted(f.now)
	require.NoError(t, f.stores.Progress.Upsert(f.ctx, progress))
}
