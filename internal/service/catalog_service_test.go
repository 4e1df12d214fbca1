package service

import (
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClass(t *testing.T) {
	f := newFixture(t)
	teacher := f.user(t, "teacher", model.Teacher)
	student := f.student(t, "amina")
	svc := NewCatalogService(f.stores)

	class, err := svc.CreateClass(f.ctx, CreateClassInput{ClassName: " Grade 1 ", GradeLevel: 1, TeacherID: teacher.ID})
	require.NoError(t, err)
	assert.Equal(t, "Grade 1", class.ClassName)
	assert.True(t, class.IsActive)
	require.NotNil(t, class.TeacherID)
	assert.Equal(t, teacher.ID, *class.TeacherID)

	_, err = svc.CreateClass(f.ctx, CreateClassInput{ClassName: "Grade 1", GradeLevel: 2})
	assert.ErrorIs(t, err, util.ErrConflict)

	_, err = svc.CreateClass(f.ctx, CreateClassInput{ClassName: "Grade 0", GradeLevel: 0})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.CreateClass(f.ctx, CreateClassInput{ClassName: "Grade 2", GradeLevel: 2, TeacherID: student.ID})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	classes, err := svc.ListClasses(f.ctx)
	require.NoError(t, err)
	assert.Len(t, classes, 1)
}

func TestCreateQuizDefaults(t *testing.T) {
	f := newFixture(t)
	subject := f.subject(t, f.class(t, "Grade 1", 1).ID, "Maths", 1)
	svc := NewCatalogService(f.stores)

	quiz, err := svc.CreateQuiz(f.ctx, CreateQuizInput{
		Title:     "Shapes",
		SubjectID: subject.ID,
		Questions: []QuestionInput{
			{QuestionText: "Sides of a triangle?", Options: []string{"2", "3"}, CorrectAnswer: 1, Marks: 2},
			{QuestionText: "Sides of a square?", Options: []string{"4", "5"}, CorrectAnswer: 0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, quiz.TotalMarks)
	assert.Equal(t, 30, quiz.TimeLimit)
	assert.Equal(t, 1, quiz.Questions[1].Marks)

	stored, err := f.stores.Quizzes.FindByID(f.ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, stored.Questions, 2)
	assert.NotEmpty(t, stored.Questions[0].ID)

	_, err = svc.CreateQuiz(f.ctx, CreateQuizInput{
		Title:     "Broken",
		SubjectID: subject.ID,
		Questions: []QuestionInput{{QuestionText: "?", Options: []string{"a", "b"}, CorrectAnswer: 2}},
	})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.CreateQuiz(f.ctx, CreateQuizInput{Title: "Empty", SubjectID: subject.ID})
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestStudentSubjects(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "amina")
	svc := NewCatalogService(f.stores)

	_, err := svc.StudentSubjects(f.ctx, student.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	class := f.class(t, "Grade 1", 1)
	f.enroll(t, student.ID, class.ID)
	maths := f.subject(t, class.ID, "Maths", 2)
	reading := f.subject(t, class.ID, "Reading", 1)
	f.complete(t, student.ID, f.lesson(t, reading.ID, "Letters", 1).ID)
	f.lesson(t, maths.ID, "Counting", 1)

	subjects, err := svc.StudentSubjects(f.ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Reading", subjects[0].Name)
	assert.Equal(t, 100, subjects[0].ProgressPercent)
	assert.Equal(t, 0, subjects[1].ProgressPercent)
}
