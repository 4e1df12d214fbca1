package service

import (
	"context"
	"errors"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
	"strings"
)

type CatalogService struct {
	Users    repository.UserStore
	Classes  repository.ClassStore
	Subjects repository.SubjectStore
	Lessons  repository.LessonStore
	Progress repository.ProgressStore
	Quizzes  repository.QuizStore
}

func NewCatalogService(stores *repository.Stores) *CatalogService {
	return &CatalogService{
		Users:    stores.Users,
		Classes:  stores.Classes,
		Subjects: stores.Subjects,
		Lessons:  stores.Lessons,
		Progress: stores.Progress,
		Quizzes:  stores.Quizzes,
	}
}

// ListClasses 供学生选班，只返回启用的班级
func (s *CatalogService) ListClasses(ctx context.Context) ([]model.Class, error) {
	classes, err := s.Classes.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if classes == nil {
		classes = []model.Class{}
	}
	return classes, nil
}

type CreateClassInput struct {
	ClassName  string
	GradeLevel int
	TeacherID  string
}

func (s *CatalogService) CreateClass(ctx context.Context, in CreateClassInput) (*model.Class, error) {
	name := strings.TrimSpace(in.ClassName)
	if name == "" {
		return nil, util.NewError(util.ErrInvalidInput, "class_name is required")
	}
	if in.GradeLevel <= 0 {
		return nil, util.NewError(util.ErrInvalidInput, "grade_level must be a positive integer")
	}

	class := &model.Class{ClassName: name, GradeLevel: in.GradeLevel, IsActive: true}
	if in.TeacherID != "" {
		teacher, err := s.Users.FindByID(ctx, in.TeacherID)
		if err != nil {
			return nil, orNotFound(err, util.NewError(util.ErrNotFound, "teacher not found"))
		}
		if teacher.Role != model.Teacher {
			return nil, util.NewError(util.ErrInvalidInput, "teacher_id must reference a teacher")
		}
		class.TeacherID = &teacher.ID
	}

	if _, err := s.Classes.FindByName(ctx, name); err == nil {
		return nil, util.ErrClassNameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err := s.Classes.Create(ctx, class); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, util.ErrClassNameTaken
		}
		return nil, err
	}
	return class, nil
}

type CreateSubjectInput struct {
	Name        string
	Description string
	ClassID     string
	Order       int
}

func (s *CatalogService) CreateSubject(ctx context.Context, teacherID string, in CreateSubjectInput) (*model.Subject, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, util.NewError(util.ErrInvalidInput, "name is required")
	}
	if in.ClassID == "" {
		return nil, util.NewError(util.ErrInvalidInput, "class_id is required")
	}
	class, err := s.Classes.FindByID(ctx, in.ClassID)
	if err != nil {
		return nil, orNotFound(err, util.ErrClassNotFound)
	}

	subject := &model.Subject{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ClassID:     class.ID,
		Order:       in.Order,
		IsActive:    true,
	}
	if teacherID != "" {
		subject.TeacherID = &teacherID
	}
	if err := s.Subjects.Create(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

type CreateLessonInput struct {
	Title       string
	Description string
	Content     string
	SubjectID   string
	Order       int
	Duration    int
}

func (s *CatalogService) CreateLesson(ctx context.Context, in CreateLessonInput) (*model.Lesson, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, util.NewError(util.ErrInvalidInput, "title is required")
	}
	if in.SubjectID == "" {
		return nil, util.NewError(util.ErrInvalidInput, "subject_id is required")
	}
	if in.Duration < 0 {
		return nil, util.NewError(util.ErrInvalidInput, "duration must not be negative")
	}
	subject, err := s.Subjects.FindByID(ctx, in.SubjectID)
	if err != nil {
		return nil, orNotFound(err, util.ErrSubjectNotFound)
	}

	duration := in.Duration
	if duration == 0 {
		duration = 30
	}
	lesson := &model.Lesson{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Content:     in.Content,
		SubjectID:   subject.ID,
		Order:       in.Order,
		Duration:    duration,
		IsActive:    true,
	}
	if err := s.Lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

type QuestionInput struct {
	QuestionText  string
	Options       []string
	CorrectAnswer int
	Marks         int
}

type CreateQuizInput struct {
	Title       string
	Description string
	SubjectID   string
	TimeLimit   int
	TotalMarks  int
	Questions   []QuestionInput
}

// CreateQuiz total_marks 为 0 时取题目分值之和
func (s *CatalogService) CreateQuiz(ctx context.Context, in CreateQuizInput) (*model.Quiz, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, util.NewError(util.ErrInvalidInput, "title is required")
	}
	if len(in.Questions) == 0 {
		return nil, util.NewError(util.ErrInvalidInput, "a quiz needs at least one question")
	}
	if in.TotalMarks < 0 || in.TimeLimit < 0 {
		return nil, util.NewError(util.ErrInvalidInput, "total_marks and time_limit must not be negative")
	}

	questions := make([]model.QuizQuestion, 0, len(in.Questions))
	for i, q := range in.Questions {
		text := strings.TrimSpace(q.QuestionText)
		if text == "" {
			return nil, util.NewError(util.ErrInvalidInput, "question_text is required")
		}
		if len(q.Options) < 2 {
			return nil, util.NewError(util.ErrInvalidInput, "each question needs at least two options")
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, util.NewError(util.ErrInvalidInput, "correct_answer must index one of the options")
		}
		marks := q.Marks
		if marks == 0 {
			marks = 1
		}
		if marks < 0 {
			return nil, util.NewError(util.ErrInvalidInput, "marks must not be negative")
		}
		questions = append(questions, model.QuizQuestion{
			Order:         i,
			QuestionText:  text,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectAnswer,
			Marks:         marks,
		})
	}

	subject, err := s.Subjects.FindByID(ctx, in.SubjectID)
	if err != nil {
		return nil, orNotFound(err, util.ErrSubjectNotFound)
	}

	timeLimit := in.TimeLimit
	if timeLimit == 0 {
		timeLimit = 30
	}
	quiz := &model.Quiz{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		SubjectID:   subject.ID,
		TimeLimit:   timeLimit,
		IsActive:    true,
		Questions:   questions,
	}
	quiz.TotalMarks = in.TotalMarks
	if quiz.TotalMarks == 0 {
		quiz.TotalMarks = quiz.SumMarks()
	}

	if err := s.Quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// StudentSubjects 学生所在班级的科目及进度
func (s *CatalogService) StudentSubjects(ctx context.Context, studentID string) ([]SubjectProgress, error) {
	student, err := s.Users.FindByID(ctx, studentID)
	if err != nil {
		return nil, orNotFound(err, util.ErrStudentNotFound)
	}
	if student.ClassID == nil {
		return nil, util.ErrStudentNotEnrolled
	}
	view, err := loadCourseView(ctx, s.Subjects, s.Lessons, s.Progress, student.ID, *student.ClassID)
	if err != nil {
		return nil, err
	}
	return view.subjectProgress(), nil
}
