package service

import (
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoQuestionQuiz(t *testing.T, f *fixture) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		Title:      "Fractions",
		SubjectID:  "subject-1",
		TotalMarks: 15,
		TimeLimit:  30,
		IsActive:   true,
		Questions: []model.QuizQuestion{
			{Order: 0, QuestionText: "1/2 + 1/2?", Options: []string{"0", "1", "2"}, CorrectAnswer: 1, Marks: 5},
			{Order: 1, QuestionText: "1/4 of 8?", Options: []string{"1", "4", "2"}, CorrectAnswer: 2, Marks: 10},
		},
	}
	require.NoError(t, f.stores.Quizzes.Create(f.ctx, quiz))
	return quiz
}

func TestQuizAttemptScoring(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "amina")
	quiz := twoQuestionQuiz(t, f)

	svc := NewQuizService(f.stores.Quizzes, f.stores.Attempts)
	svc.Clock = f.clock

	started, err := svc.StartAttempt(f.ctx, student.ID, quiz.ID)
	require.NoError(t, err)
	require.Len(t, started.Questions, 2)
	assert.Equal(t, 15, started.Quiz.TotalMarks)

	q1, q2 := started.Questions[0].ID, started.Questions[1].ID
	result, err := svc.SubmitAttempt(f.ctx, student.ID, started.AttemptID, []SubmittedAnswer{
		{QuestionID: q2, SelectedAnswer: 0},
		{QuestionID: q1, SelectedAnswer: 1},
	}, 120)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Score)
	assert.Equal(t, 15, result.TotalMarks)
	assert.Equal(t, 33, result.Percentage)
	require.Len(t, result.DetailedAnswers, 2)
	assert.True(t, result.DetailedAnswers[0].IsCorrect)
	assert.False(t, result.DetailedAnswers[1].IsCorrect)
	assert.Equal(t, 2, result.DetailedAnswers[1].CorrectAnswer)

	attempts, err := svc.ListAttempts(f.ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 5, attempts[0].Score)
	assert.Equal(t, 120, attempts[0].TimeTaken)
	assert.NotNil(t, attempts[0].CompletedAt)
}

func TestSubmitAttemptOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.student(t, "owner")
	other := f.student(t, "other")
	quiz := twoQuestionQuiz(t, f)
	svc := NewQuizService(f.stores.Quizzes, f.stores.Attempts)

	started, err := svc.StartAttempt(f.ctx, owner.ID, quiz.ID)
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(f.ctx, other.ID, started.AttemptID, nil, 0)
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = svc.SubmitAttempt(f.ctx, owner.ID, "missing", nil, 0)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = svc.StartAttempt(f.ctx, owner.ID, "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestScoreRejectsMalformedAnswers(t *testing.T) {
	quiz := &model.Quiz{Questions: []model.QuizQuestion{
		{UUIDBase: model.UUIDBase{ID: "q1"}, CorrectAnswer: 0, Marks: 1},
		{UUIDBase: model.UUIDBase{ID: "q2"}, CorrectAnswer: 1, Marks: 1},
	}}

	tests := []struct {
		name    string
		answers []SubmittedAnswer
	}{
		{"too few", []SubmittedAnswer{{QuestionID: "q1"}}},
		{"duplicate", []SubmittedAnswer{{QuestionID: "q1"}, {QuestionID: "q1"}}},
		{"unknown", []SubmittedAnswer{{QuestionID: "q1"}, {QuestionID: "q9"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Score(quiz, tt.answers)
			assert.ErrorIs(t, err, util.ErrInvalidInput)
		})
	}

	score, breakdown, err := Score(quiz, []SubmittedAnswer{{QuestionID: "q2", SelectedAnswer: 1}, {QuestionID: "q1", SelectedAnswer: 0}})
	require.NoError(t, err)
	assert.Equal(t, 2, score)
	assert.Equal(t, "q1", breakdown[0].QuestionID)
}

func TestAverageScore(t *testing.T) {
	assert.Equal(t, 0, AverageScore(nil))
	assert.Equal(t, 50, AverageScore([]model.QuizAttempt{{Percentage: 40}, {Percentage: 60}}))
}
