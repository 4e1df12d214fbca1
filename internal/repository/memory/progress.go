package memory

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"time"
)

type progressStore struct {
	db *DB
}

// find 找到 (student, lesson) 对应的行，调用方需持有锁
func (s *progressStore) find(studentID, lessonID string) *model.LessonProgress {
	for _, id := range s.db.progress.order {
		if row := s.db.progress.rows[id]; row.StudentID == studentID && row.LessonID == lessonID {
			return row
		}
	}
	return nil
}

func (s *progressStore) Upsert(ctx context.Context, progress *model.LessonProgress) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if existing := s.find(progress.StudentID, progress.LessonID); existing != nil {
		progress.ID = existing.ID
		progress.CreatedAt = existing.CreatedAt
	}
	progress.EnsureID()
	s.db.stamp(&progress.CreatedAt, &progress.UpdatedAt)
	s.db.progress.put(progress.ID, *progress)
	return nil
}

func (s *progressStore) Find(ctx context.Context, studentID, lessonID string) (*model.LessonProgress, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	row := s.find(studentID, lessonID)
	if row == nil {
		return nil, repository.ErrNotFound
	}
	found := *row
	return &found, nil
}

func (s *progressStore) completed(studentID string, lessonIDs []string) []model.LessonProgress {
	return s.db.progress.filter(func(p *model.LessonProgress) bool {
		return p.StudentID == studentID && p.Status == model.Completed && !p.IsArchived &&
			(lessonIDs == nil || contains(lessonIDs, p.LessonID))
	})
}

func (s *progressStore) CountCompleted(ctx context.Context, studentID string, lessonIDs []string) (int64, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return int64(len(s.completed(studentID, lessonIDs))), nil
}

func (s *progressStore) CompletedLessonIDs(ctx context.Context, studentID string, lessonIDs []string) ([]string, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var ids []string
	for _, p := range s.completed(studentID, lessonIDs) {
		ids = append(ids, p.LessonID)
	}
	return ids, nil
}

func (s *progressStore) CountAllCompleted(ctx context.Context, studentID string) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return int64(len(s.completed(studentID, nil))), nil
}

func (s *progressStore) ArchiveByStudent(ctx context.Context, studentID string, at time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var archived int64
	for _, row := range s.db.progress.rows {
		if row.StudentID == studentID && !row.IsArchived {
			archivedAt := at
			row.IsArchived = true
			row.ArchivedAt = &archivedAt
			archived++
		}
	}
	return archived, nil
}
