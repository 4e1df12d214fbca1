package service

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
	"rural_lms_backend/pkg/logger"
	"rural_lms_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type QuizService struct {
	Quizzes  repository.QuizStore
	Attempts repository.AttemptStore
	Clock    Clock
}

func NewQuizService(quizzes repository.QuizStore, attempts repository.AttemptStore) *QuizService {
	return &QuizService{Quizzes: quizzes, Attempts: attempts}
}

type QuizSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TotalMarks  int    `json:"total_marks"`
	TimeLimit   int    `json:"time_limit"`
}

func (s *QuizService) ListBySubject(ctx context.Context, subjectID string) ([]QuizSummary, error) {
	quizzes, err := s.Quizzes.FindBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, QuizSummary{
			ID:          quiz.ID,
			Title:       quiz.Title,
			Description: quiz.Description,
			TotalMarks:  quiz.TotalMarks,
			TimeLimit:   quiz.TimeLimit,
		})
	}
	return summaries, nil
}

// PublicQuestion 作答前下发的题目，不含正确答案
type PublicQuestion struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Marks        int      `json:"marks"`
}

type StartedQuiz struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TimeLimit  int    `json:"time_limit"`
	TotalMarks int    `json:"total_marks"`
}

type StartAttemptResult struct {
	AttemptID string           `json:"attemptId"`
	Quiz      StartedQuiz      `json:"quiz"`
	Questions []PublicQuestion `json:"questions"`
}

func (s *QuizService) StartAttempt(ctx context.Context, studentID, quizID string) (*StartAttemptResult, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, orNotFound(err, util.ErrQuizNotFound)
	}
	if !quiz.IsActive {
		return nil, util.ErrQuizNotFound
	}

	attempt := &model.QuizAttempt{
		StudentID:  studentID,
		QuizID:     quiz.ID,
		TotalMarks: quiz.TotalMarks,
		Answers:    []model.AttemptAnswer{},
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}

	questions := make([]PublicQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, PublicQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      append([]string(nil), q.Options...),
			Marks:        q.Marks,
		})
	}

	return &StartAttemptResult{
		AttemptID: attempt.ID,
		Quiz: StartedQuiz{
			ID:         quiz.ID,
			Title:      quiz.Title,
			TimeLimit:  quiz.TimeLimit,
			TotalMarks: quiz.TotalMarks,
		},
		Questions: questions,
	}, nil
}

type SubmittedAnswer struct {
	QuestionID     string `json:"question_id" binding:"required"`
	SelectedAnswer int    `json:"selected_answer"`
}

type ScoredResult struct {
	AttemptID       string                `json:"attemptId"`
	Score           int                   `json:"score"`
	TotalMarks      int                   `json:"total_marks"`
	Percentage      int                   `json:"percentage"`
	DetailedAnswers []model.AttemptAnswer `json:"detailedAnswers"`
}

// Score 按题目 ID 对应答案评分；答案数量必须与题目数一致，且不能有未知或重复的题目 ID
func Score(quiz *model.Quiz, answers []SubmittedAnswer) (int, []model.AttemptAnswer, error) {
	if len(answers) != len(quiz.Questions) {
		return 0, nil, util.NewError(util.ErrInvalidInput, "answers must cover every question exactly once")
	}

	known := make(map[string]bool, len(quiz.Questions))
	for _, question := range quiz.Questions {
		known[question.ID] = true
	}

	submitted := make(map[string]int, len(answers))
	for _, answer := range answers {
		if !known[answer.QuestionID] {
			return 0, nil, util.NewError(util.ErrInvalidInput, "unknown question "+answer.QuestionID)
		}
		if _, dup := submitted[answer.QuestionID]; dup {
			return 0, nil, util.NewError(util.ErrInvalidInput, "duplicate answer for question "+answer.QuestionID)
		}
		submitted[answer.QuestionID] = answer.SelectedAnswer
	}

	score := 0
	breakdown := make([]model.AttemptAnswer, 0, len(quiz.Questions))
	for i, question := range quiz.Questions {
		selected, ok := submitted[question.ID]
		if !ok {
			return 0, nil, util.NewError(util.ErrInvalidInput, "missing answer for question "+question.ID)
		}
		correct := selected == question.CorrectAnswer
		if correct {
			score += question.Marks
		}
		breakdown = append(breakdown, model.AttemptAnswer{
			QuestionID:     question.ID,
			QuestionIndex:  i,
			SelectedAnswer: selected,
			IsCorrect:      correct,
			CorrectAnswer:  question.CorrectAnswer,
			Marks:          question.Marks,
		})
	}
	return score, breakdown, nil
}

// SubmitAttempt 原地更新尝试记录，重复提交以最后一次为准
func (s *QuizService) SubmitAttempt(ctx context.Context, studentID, attemptID string, answers []SubmittedAnswer, timeTaken int) (*ScoredResult, error) {
	if timeTaken < 0 {
		return nil, util.NewError(util.ErrInvalidInput, "time_taken must not be negative")
	}

	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, orNotFound(err, util.ErrAttemptNotFound)
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrNotAttemptOwner
	}

	quiz, err := s.Quizzes.FindByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, orNotFound(err, util.ErrQuizNotFound)
	}

	score, breakdown, err := Score(quiz, answers)
	if err != nil {
		return nil, err
	}

	now := s.Clock.now()
	attempt.TotalMarks = quiz.TotalMarks
	attempt.Score = score
	attempt.Percentage = util.Percent(int64(score), int64(quiz.TotalMarks))
	attempt.TimeTaken = timeTaken
	attempt.Answers = breakdown
	attempt.CompletedAt = &now
	if err := s.Attempts.Save(ctx, attempt); err != nil {
		return nil, err
	}

	monitoring.QuizSubmissionCounter.Inc()
	monitoring.QuizScore.Observe(float64(attempt.Percentage))
	logger.Log.Debug("Quiz attempt scored",
		zap.String("attemptId", attempt.ID),
		zap.Int("score", score),
		zap.Int("percentage", attempt.Percentage))

	return &ScoredResult{
		AttemptID:       attempt.ID,
		Score:           score,
		TotalMarks:      quiz.TotalMarks,
		Percentage:      attempt.Percentage,
		DetailedAnswers: breakdown,
	}, nil
}

func (s *QuizService) ListAttempts(ctx context.Context, studentID string) ([]model.QuizAttempt, error) {
	attempts, err := s.Attempts.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.QuizAttempt{}
	}
	return attempts, nil
}
