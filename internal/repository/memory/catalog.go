package memory

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"sort"
)

type classStore struct {
	db *DB
}

func (s *classStore) Create(ctx context.Context, class *model.Class) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.classes.rows {
		if existing.ClassName == class.ClassName {
			return repository.ErrDuplicate
		}
	}
	class.EnsureID()
	s.db.stamp(&class.CreatedAt, &class.UpdatedAt)
	s.db.classes.put(class.ID, *class)
	return nil
}

func (s *classStore) FindByID(ctx context.Context, id string) (*model.Class, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	class, ok := s.db.classes.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &class, nil
}

func (s *classStore) FindByName(ctx context.Context, name string) (*model.Class, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	classes := s.db.classes.filter(func(c *model.Class) bool { return c.ClassName == name })
	if len(classes) == 0 {
		return nil, repository.ErrNotFound
	}
	return &classes[0], nil
}

func (s *classStore) FindActiveByGradeLevel(ctx context.Context, gradeLevel int) (*model.Class, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	classes := s.db.classes.filter(func(c *model.Class) bool { return c.IsActive && c.GradeLevel == gradeLevel })
	if len(classes) == 0 {
		return nil, repository.ErrNotFound
	}
	sortBy(classes, func(c *model.Class) string { return c.ClassName })
	return &classes[0], nil
}

func (s *classStore) List(ctx context.Context, activeOnly bool) ([]model.Class, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	classes := s.db.classes.filter(func(c *model.Class) bool { return !activeOnly || c.IsActive })
	sortClasses(classes)
	return classes, nil
}

func (s *classStore) FindByTeacher(ctx context.Context, teacherID string) ([]model.Class, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	classes := s.db.classes.filter(func(c *model.Class) bool {
		return c.IsActive && c.TeacherID != nil && *c.TeacherID == teacherID
	})
	sortClasses(classes)
	return classes, nil
}

func (s *classStore) CountActive(ctx context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return int64(len(s.db.classes.filter(func(c *model.Class) bool { return c.IsActive }))), nil
}

func sortClasses(classes []model.Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].GradeLevel != classes[j].GradeLevel {
			return classes[i].GradeLevel < classes[j].GradeLevel
		}
		return classes[i].ClassName < classes[j].ClassName
	})
}

type subjectStore struct {
	db *DB
}

func (s *subjectStore) Create(ctx context.Context, subject *model.Subject) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	subject.EnsureID()
	s.db.stamp(&subject.CreatedAt, &subject.UpdatedAt)
	s.db.subjects.put(subject.ID, *subject)
	return nil
}

func (s *subjectStore) FindByID(ctx context.Context, id string) (*model.Subject, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	subject, ok := s.db.subjects.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &subject, nil
}

func (s *subjectStore) FindByClass(ctx context.Context, classID string, activeOnly bool) ([]model.Subject, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	subjects := s.db.subjects.filter(func(sub *model.Subject) bool {
		return sub.ClassID == classID && (!activeOnly || sub.IsActive)
	})
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].Order != subjects[j].Order {
			return subjects[i].Order < subjects[j].Order
		}
		return subjects[i].Name < subjects[j].Name
	})
	return subjects, nil
}

func (s *subjectStore) CountActive(ctx context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return int64(len(s.db.subjects.filter(func(sub *model.Subject) bool { return sub.IsActive }))), nil
}

type lessonStore struct {
	db *DB
}

func (s *lessonStore) Create(ctx context.Context, lesson *model.Lesson) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	lesson.EnsureID()
	s.db.stamp(&lesson.CreatedAt, &lesson.UpdatedAt)
	s.db.lessons.put(lesson.ID, *lesson)
	return nil
}

func (s *lessonStore) FindByID(ctx context.Context, id string) (*model.Lesson, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	lesson, ok := s.db.lessons.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &lesson, nil
}

func (s *lessonStore) Update(ctx context.Context, lesson *model.Lesson) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.lessons.get(lesson.ID); !ok {
		return repository.ErrNotFound
	}
	s.db.stamp(&lesson.CreatedAt, &lesson.UpdatedAt)
	s.db.lessons.put(lesson.ID, *lesson)
	return nil
}

func (s *lessonStore) FindBySubjects(ctx context.Context, subjectIDs []string) ([]model.Lesson, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	lessons := s.db.lessons.filter(func(l *model.Lesson) bool {
		return l.IsActive && contains(subjectIDs, l.SubjectID)
	})
	sort.SliceStable(lessons, func(i, j int) bool {
		if lessons[i].SubjectID != lessons[j].SubjectID {
			return lessons[i].SubjectID < lessons[j].SubjectID
		}
		return lessons[i].Order < lessons[j].Order
	})
	return lessons, nil
}

func (s *lessonStore) CountActive(ctx context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return int64(len(s.db.lessons.filter(func(l *model.Lesson) bool { return l.IsActive }))), nil
}

type quizStore struct {
	db *DB
}

func (s *quizStore) Create(ctx context.Context, quiz *model.Quiz) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	quiz.EnsureID()
	s.db.stamp(&quiz.CreatedAt, &quiz.UpdatedAt)
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		question.EnsureID()
		question.QuizID = quiz.ID
		s.db.stamp(&question.CreatedAt, &question.UpdatedAt)
	}
	stored := *quiz
	stored.Questions = append([]model.QuizQuestion(nil), quiz.Questions...)
	s.db.quizzes.put(quiz.ID, stored)
	return nil
}

func (s *quizStore) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	quiz, ok := s.db.quizzes.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	quiz.Questions = append([]model.QuizQuestion(nil), quiz.Questions...)
	sort.SliceStable(quiz.Questions, func(i, j int) bool {
		return quiz.Questions[i].Order < quiz.Questions[j].Order
	})
	return &quiz, nil
}

func (s *quizStore) FindBySubject(ctx context.Context, subjectID string) ([]model.Quiz, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	quizzes := s.db.quizzes.filter(func(q *model.Quiz) bool { return q.IsActive && q.SubjectID == subjectID })
	for i := range quizzes {
		quizzes[i].Questions = nil
	}
	return quizzes, nil
}

func (s *quizStore) CountActive(ctx context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return int64(len(s.db.quizzes.filter(func(q *model.Quiz) bool { return q.IsActive }))), nil
}
