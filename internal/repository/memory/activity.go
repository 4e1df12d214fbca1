package memory

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"time"
)

type attemptStore struct {
	db *DB
}

func (s *attemptStore) Create(ctx context.Context, attempt *model.QuizAttempt) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	attempt.EnsureID()
	s.db.stamp(&attempt.CreatedAt, &attempt.UpdatedAt)
	s.db.attempts.put(attempt.ID, *attempt)
	return nil
}

func (s *attemptStore) FindByID(ctx context.Context, id string) (*model.QuizAttempt, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	attempt, ok := s.db.attempts.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &attempt, nil
}

func (s *attemptStore) Save(ctx context.Context, attempt *model.QuizAttempt) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	attempt.EnsureID()
	s.db.stamp(&attempt.CreatedAt, &attempt.UpdatedAt)
	stored := *attempt
	stored.Answers = append(stored.Answers[:0:0], attempt.Answers...)
	s.db.attempts.put(attempt.ID, stored)
	return nil
}

func (s *attemptStore) FindByStudent(ctx context.Context, studentID string) ([]model.QuizAttempt, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	attempts := s.db.attempts.filter(func(a *model.QuizAttempt) bool { return a.StudentID == studentID })
	return newestFirst(attempts, func(a *model.QuizAttempt) time.Time { return a.CreatedAt }), nil
}

type attendanceStore struct {
	db *DB
}

func (s *attendanceStore) Upsert(ctx context.Context, record *model.Attendance) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	record.Date = model.DateOnly(record.Date)
	for _, id := range s.db.attendance.order {
		if row := s.db.attendance.rows[id]; row.StudentID == record.StudentID && model.SameDay(row.Date, record.Date) {
			record.ID = row.ID
			record.CreatedAt = row.CreatedAt
			break
		}
	}
	record.EnsureID()
	s.db.stamp(&record.CreatedAt, &record.UpdatedAt)
	s.db.attendance.put(record.ID, *record)
	return nil
}

func (s *attendanceStore) FindByStudent(ctx context.Context, studentID string) ([]model.Attendance, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	records := s.db.attendance.filter(func(a *model.Attendance) bool { return a.StudentID == studentID })
	return newestFirst(records, func(a *model.Attendance) time.Time { return a.Date }), nil
}

type announcementStore struct {
	db *DB
}

func (s *announcementStore) Create(ctx context.Context, announcement *model.Announcement) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	announcement.EnsureID()
	s.db.stamp(&announcement.CreatedAt, &announcement.UpdatedAt)
	stored := *announcement
	stored.Author = nil
	s.db.announcements.put(announcement.ID, stored)
	return nil
}

// withAuthor 模拟 gorm 的 Preload("Author")，调用方需持有锁
func (s *announcementStore) withAuthor(rows []model.Announcement) []model.Announcement {
	for i := range rows {
		if author, ok := s.db.users.get(rows[i].AuthorID); ok {
			rows[i].Author = &author
		}
	}
	return rows
}

func (s *announcementStore) FindActive(ctx context.Context, now time.Time) ([]model.Announcement, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rows := s.db.announcements.filter(func(a *model.Announcement) bool { return a.Live(now) })
	rows = newestFirst(rows, func(a *model.Announcement) time.Time { return a.CreatedAt })
	return s.withAuthor(rows), nil
}

func (s *announcementStore) FindByAuthor(ctx context.Context, authorID string, n int) ([]model.Announcement, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rows := s.db.announcements.filter(func(a *model.Announcement) bool { return a.AuthorID == authorID })
	return limit(newestFirst(rows, func(a *model.Announcement) time.Time { return a.CreatedAt }), n), nil
}

type supportStore struct {
	db *DB
}

func (s *supportStore) Create(ctx context.Context, request *model.SupportRequest) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	request.EnsureID()
	s.db.stamp(&request.CreatedAt, &request.UpdatedAt)
	s.db.support.put(request.ID, *request)
	return nil
}

func (s *supportStore) FindByID(ctx context.Context, id string) (*model.SupportRequest, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	request, ok := s.db.support.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &request, nil
}

func (s *supportStore) Update(ctx context.Context, request *model.SupportRequest) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.support.get(request.ID); !ok {
		return repository.ErrNotFound
	}
	s.db.stamp(&request.CreatedAt, &request.UpdatedAt)
	s.db.support.put(request.ID, *request)
	return nil
}

func (s *supportStore) FindByUser(ctx context.Context, userID string) ([]model.SupportRequest, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rows := s.db.support.filter(func(r *model.SupportRequest) bool { return r.UserID == userID })
	return newestFirst(rows, func(r *model.SupportRequest) time.Time { return r.CreatedAt }), nil
}

func (s *supportStore) CountByUserAndStatus(ctx context.Context, userID string, status model.SupportStatus) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rows := s.db.support.filter(func(r *model.SupportRequest) bool { return r.UserID == userID && r.Status == status })
	return int64(len(rows)), nil
}

func (s *supportStore) CountByStatus(ctx context.Context, status model.SupportStatus) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return int64(len(s.db.support.filter(func(r *model.SupportRequest) bool { return r.Status == status }))), nil
}

func (s *supportStore) ListByStatus(ctx context.Context, status model.SupportStatus) ([]model.SupportRequest, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rows := s.db.support.filter(func(r *model.SupportRequest) bool { return status == "" || r.Status == status })
	return newestFirst(rows, func(r *model.SupportRequest) time.Time { return r.CreatedAt }), nil
}
