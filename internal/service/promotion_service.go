package service

import (
	"context"
	"rural_lms_backend/internal/config"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
	"rural_lms_backend/pkg/logger"
	"rural_lms_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
)

type PromotionService struct {
	Users      repository.UserStore
	Classes    repository.ClassStore
	Subjects   repository.SubjectStore
	Lessons    repository.LessonStore
	Progress   repository.ProgressStore
	Enrollment *EnrollmentService
	Clock      Clock

	mu     sync.RWMutex
	policy config.PromotionConfig
}

func NewPromotionService(stores *repository.Stores, enrollment *EnrollmentService, policy config.PromotionConfig) *PromotionService {
	return &PromotionService{
		Users:      stores.Users,
		Classes:    stores.Classes,
		Subjects:   stores.Subjects,
		Lessons:    stores.Lessons,
		Progress:   stores.Progress,
		Enrollment: enrollment,
		policy:     policy,
	}
}

func (s *PromotionService) SetPolicy(policy config.PromotionConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = policy
}

func (s *PromotionService) Policy() config.PromotionConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

type PromotionResult struct {
	Student         *model.User  `json:"student"`
	FromClass       *model.Class `json:"from_class"`
	ToClass         *model.Class `json:"to_class"`
	ArchivedRecords int64        `json:"archived_records"`
	PromotedAt      time.Time    `json:"promoted_at"`
}

func (s *PromotionService) Promote(ctx context.Context, studentID string) (*PromotionResult, error) {
	result, err := s.promote(ctx, studentID)
	if err != nil {
		_, reason := util.Classify(err)
		monitoring.PromotionCounter.WithLabelValues(reason).Inc()
		return nil, err
	}
	monitoring.PromotionCounter.WithLabelValues("success").Inc()
	return result, nil
}

func (s *PromotionService) promote(ctx context.Context, studentID string) (*PromotionResult, error) {
	if studentID == "" {
		return nil, util.NewError(util.ErrInvalidInput, "studentId is required")
	}
	student, err := s.Users.FindByID(ctx, studentID)
	if err != nil {
		return nil, orNotFound(err, util.ErrStudentNotFound)
	}
	if !student.IsStudent() {
		return nil, util.ErrStudentNotFound
	}
	if student.ClassID == nil {
		return nil, util.ErrStudentNotEnrolled
	}

	current, err := s.Classes.FindByID(ctx, *student.ClassID)
	if err != nil {
		// 班级引用悬空，按未入班处理
		return nil, orNotFound(err, util.ErrStudentNotEnrolled)
	}

	next, err := s.Classes.FindActiveByGradeLevel(ctx, current.GradeLevel+1)
	if err != nil {
		return nil, orNotFound(err, util.ErrNoHigherClassFound)
	}

	policy := s.Policy()
	if policy.RequireCompletion {
		ok, err := s.meetsCompletion(ctx, student.ID, current.ID, policy.CompletionThreshold)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, util.ErrRequirementsUnmet
		}
	}

	if err := s.Users.SetClass(ctx, student.ID, &next.ID); err != nil {
		return nil, orNotFound(err, util.ErrStudentNotFound)
	}
	now := s.Clock.now()
	student.ClassID = &next.ID

	// 以下副作用失败不回滚升班
	var archived int64
	if policy.ArchiveProgress {
		archived, err = s.Progress.ArchiveByStudent(ctx, student.ID, now)
		if err != nil {
			logger.Log.Warn("Failed to archive progress after promotion", zap.String("studentId", student.ID), zap.Error(err))
		}
	}
	if s.Enrollment != nil {
		s.Enrollment.bootstrapAttendance(ctx, student.ID, next.ID)
	}

	logger.Log.Info("Student promoted",
		zap.String("studentId", student.ID),
		zap.String("from", current.ClassName),
		zap.String("to", next.ClassName),
		zap.Int64("archived", archived))

	return &PromotionResult{
		Student:         student,
		FromClass:       current,
		ToClass:         next,
		ArchivedRecords: archived,
		PromotedAt:      now,
	}, nil
}

// meetsCompletion 当前班级所有启用科目的课时完成率是否达到阈值；没有课时视为达到
func (s *PromotionService) meetsCompletion(ctx context.Context, studentID, classID string, threshold float64) (bool, error) {
	subjects, err := s.Subjects.FindByClass(ctx, classID, true)
	if err != nil {
		return false, err
	}
	lessons, err := s.Lessons.FindBySubjects(ctx, subjectIDs(subjects))
	if err != nil {
		return false, err
	}
	if len(lessons) == 0 {
		return true, nil
	}
	completed, err := s.Progress.CountCompleted(ctx, studentID, lessonIDs(lessons))
	if err != nil {
		return false, err
	}
	return float64(completed)/float64(len(lessons)) >= threshold, nil
}
