package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
	"rural_lms_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
)

type LessonService struct {
	Lessons  repository.LessonStore
	Subjects repository.SubjectStore
	Progress repository.ProgressStore
	Storage  StorageProvider
	Clock    Clock
}

func NewLessonService(stores *repository.Stores, storage StorageProvider) *LessonService {
	return &LessonService{
		Lessons:  stores.Lessons,
		Subjects: stores.Subjects,
		Progress: stores.Progress,
		Storage:  storage,
	}
}

type LessonSubject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LessonDetail struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	Duration    int            `json:"duration"`
	MaterialURL string         `json:"material_url,omitempty"`
	Subject     *LessonSubject `json:"subject"`
}

type LessonProgressView struct {
	Status             model.ProgressStatus `json:"status"`
	ProgressPercentage int                  `json:"progress_percentage"`
	CompletedAt        *time.Time           `json:"completed_at,omitempty"`
	LastAccessed       *time.Time           `json:"last_accessed,omitempty"`
}

type LessonWithProgress struct {
	Lesson   LessonDetail       `json:"lesson"`
	Progress LessonProgressView `json:"progress"`
}

func (s *LessonService) findLesson(ctx context.Context, lessonID string) (*model.Lesson, error) {
	lesson, err := s.Lessons.FindByID(ctx, lessonID)
	if err != nil {
		return nil, orNotFound(err, util.ErrLessonNotFound)
	}
	if !lesson.IsActive {
		return nil, util.ErrLessonNotFound
	}
	return lesson, nil
}

// GetLesson 没有进度记录时返回 not_started / 0
func (s *LessonService) GetLesson(ctx context.Context, studentID, lessonID string) (*LessonWithProgress, error) {
	lesson, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	detail := LessonDetail{
		ID:          lesson.ID,
		Title:       lesson.Title,
		Description: lesson.Description,
		Content:     lesson.Content,
		Duration:    lesson.Duration,
		MaterialURL: lesson.MaterialURL,
	}
	if subject, err := s.Subjects.FindByID(ctx, lesson.SubjectID); err == nil {
		detail.Subject = &LessonSubject{ID: subject.ID, Name: subject.Name}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	view := LessonProgressView{Status: model.NotStarted}
	progress, err := s.Progress.Find(ctx, studentID, lesson.ID)
	switch {
	case err == nil && !progress.IsArchived:
		view = LessonProgressView{
			Status:             progress.Status,
			ProgressPercentage: progress.ProgressPercentage,
			CompletedAt:        progress.CompletedAt,
			LastAccessed:       &progress.LastAccessed,
		}
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	return &LessonWithProgress{Lesson: detail, Progress: view}, nil
}

func (s *LessonService) CompleteLesson(ctx context.Context, studentID, lessonID string) (*model.LessonProgress, error) {
	lesson, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	progress := &model.LessonProgress{StudentID: studentID, LessonID: lesson.ID}
	progress.MarkCompleted(s.Clock.now())
	if err := s.Progress.Upsert(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// UpdateProgress 100 视为完成；已完成的课时不会被降级
func (s *LessonService) UpdateProgress(ctx context.Context, studentID, lessonID string, percentage int) (*model.LessonProgress, error) {
	if percentage < 0 || percentage > 100 {
		return nil, util.NewError(util.ErrInvalidInput, "progress_percentage must be between 0 and 100")
	}
	lesson, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.now()
	existing, err := s.Progress.Find(ctx, studentID, lesson.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err == nil && !existing.IsArchived && existing.Status == model.Completed {
		existing.LastAccessed = now
		if err := s.Progress.Upsert(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	progress := &model.LessonProgress{StudentID: studentID, LessonID: lesson.ID}
	if percentage == 100 {
		progress.MarkCompleted(now)
	} else {
		progress.Status = model.InProgress
		progress.ProgressPercentage = percentage
		progress.LastAccessed = now
	}
	if err := s.Progress.Upsert(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func allowedMaterial(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range util.AllowedMaterialExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// UploadMaterial 上传课时资料并记录访问地址
func (s *LessonService) UploadMaterial(ctx context.Context, lessonID, filename string, reader io.Reader, size int64, contentType string) (*model.Lesson, error) {
	if size <= 0 {
		return nil, util.NewError(util.ErrInvalidInput, "file is empty")
	}
	if size > util.MaxMaterialSize {
		return nil, util.NewError(util.ErrInvalidInput, "file exceeds the 50MB limit")
	}
	if !allowedMaterial(filename) {
		return nil, util.NewError(util.ErrInvalidInput, "file type is not allowed")
	}
	sniffed, body, err := util.ValidateMaterialType(reader)
	if err != nil {
		if errors.Is(err, util.ErrInvalidFileType) {
			return nil, util.NewError(util.ErrInvalidInput, "file content is not an allowed material type")
		}
		return nil, err
	}
	if contentType == "" || contentType == util.MimeOctetStream {
		contentType = sniffed
	}

	lesson, err := s.Lessons.FindByID(ctx, lessonID)
	if err != nil {
		return nil, orNotFound(err, util.ErrLessonNotFound)
	}

	objectName := path.Join("lessons", lesson.ID,
		fmt.Sprintf("%d%s", s.Clock.now().UnixNano(), strings.ToLower(filepath.Ext(filename))))
	url, err := s.Storage.Upload(ctx, objectName, body, size, contentType)
	if err != nil {
		return nil, err
	}

	lesson.MaterialURL = url
	if err := s.Lessons.Update(ctx, lesson); err != nil {
		if delErr := s.Storage.Delete(ctx, objectName); delErr != nil {
			logger.Log.Warn("Failed to remove orphaned material", zap.String("object", objectName), zap.Error(delErr))
		}
		return nil, err
	}
	return lesson, nil
}
