package service

import (
	"context"
	"errors"
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

type EnrollmentService struct {
	Users      repository.UserStore
	Classes    repository.ClassStore
	Subjects   repository.SubjectStore
	Progress   repository.ProgressStore
	Attempts   repository.AttemptStore
	Attendance *AttendanceService
	Clock      Clock

	mu     sync.RWMutex
	policy config.EnrollmentConfig
}

func NewEnrollmentService(stores *repository.Stores, attendance *AttendanceService, policy config.EnrollmentConfig) *EnrollmentService {
	return &EnrollmentService{
		Users:      stores.Users,
		Classes:    stores.Classes,
		Subjects:   stores.Subjects,
		Progress:   stores.Progress,
		Attempts:   stores.Attempts,
		Attendance: attendance,
		policy:     policy,
	}
}

// SetPolicy 配置热更新
func (s *EnrollmentService) SetPolicy(policy config.EnrollmentConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = policy
}

func (s *EnrollmentService) Policy() config.EnrollmentConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// ResolveClass 找不到或班级已停用都视为 NotFound
func (s *EnrollmentService) ResolveClass(ctx context.Context, ref ClassRef) (*model.Class, error) {
	var (
		class *model.Class
		err   error
	)
	if id, ok := ref.ID(); ok {
		class, err = s.Classes.FindByID(ctx, id)
	} else if level, ok := ref.GradeLevel(); ok {
		class, err = s.Classes.FindActiveByGradeLevel(ctx, level)
	} else {
		return nil, util.NewError(util.ErrInvalidInput, "class_id or class_number is required")
	}
	if err != nil {
		return nil, orNotFound(err, util.ErrClassNotFound)
	}
	if !class.IsActive {
		return nil, util.ErrClassNotFound
	}
	return class, nil
}

func (s *EnrollmentService) findStudent(ctx context.Context, studentID string) (*model.User, error) {
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
	return student, nil
}

// Enroll 把学生放入班级，重复调用结果不变
func (s *EnrollmentService) Enroll(ctx context.Context, studentID string, ref ClassRef) (*model.Class, error) {
	class, err := s.ResolveClass(ctx, ref)
	if err != nil {
		monitoring.EnrollmentCounter.WithLabelValues("enroll", "failure").Inc()
		return nil, err
	}
	err = s.assign(ctx, studentID, class)
	monitoring.EnrollmentCounter.WithLabelValues("enroll", monitoring.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return class, nil
}

func (s *EnrollmentService) assign(ctx context.Context, studentID string, class *model.Class) error {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return err
	}

	changed := !student.InClass(class.ID)
	if err := s.Users.SetClass(ctx, student.ID, &class.ID); err != nil {
		return orNotFound(err, util.ErrStudentNotFound)
	}

	if changed {
		logger.Log.Info("Student enrolled",
			zap.String("studentId", student.ID),
			zap.String("classId", class.ID),
			zap.String("className", class.ClassName))
		s.bootstrapAttendance(ctx, student.ID, class.ID)
	}
	return nil
}

// bootstrapAttendance 失败只记录日志
func (s *EnrollmentService) bootstrapAttendance(ctx context.Context, studentID, classID string) {
	if !s.Policy().BootstrapAttendance || s.Attendance == nil {
		return
	}
	if err := s.Attendance.RecordInitial(ctx, studentID, classID); err != nil {
		logger.Log.Warn("Failed to record initial attendance",
			zap.String("studentId", studentID), zap.String("classId", classID), zap.Error(err))
	}
}

type BulkEnrollFailure struct {
	StudentID string `json:"student_id"`
	Error     string `json:"error"`
}

type BulkEnrollResult struct {
	Class      *model.Class        `json:"class"`
	Successful []string            `json:"successful"`
	Failed     []BulkEnrollFailure `json:"failed"`
}

// BulkEnroll 班级解析失败时整体失败，单个学生失败只记入结果
func (s *EnrollmentService) BulkEnroll(ctx context.Context, studentIDs []string, ref ClassRef) (*BulkEnrollResult, error) {
	if len(studentIDs) == 0 {
		return nil, util.NewError(util.ErrInvalidInput, "studentIds must not be empty")
	}
	class, err := s.ResolveClass(ctx, ref)
	if err != nil {
		return nil, err
	}

	result := &BulkEnrollResult{
		Class:      class,
		Successful: []string{},
		Failed:     []BulkEnrollFailure{},
	}
	seen := make(map[string]bool, len(studentIDs))
	for _, studentID := range studentIDs {
		if seen[studentID] {
			continue
		}
		seen[studentID] = true

		err := s.assign(ctx, studentID, class)
		monitoring.EnrollmentCounter.WithLabelValues("bulk", monitoring.Outcome(err)).Inc()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			message := err.Error()
			if status, _ := util.Classify(err); status >= 500 {
				logger.Log.Error("Bulk enrollment failed for student", zap.String("studentId", studentID), zap.Error(err))
				message = "internal error"
			}
			result.Failed = append(result.Failed, BulkEnrollFailure{StudentID: studentID, Error: message})
			continue
		}
		result.Successful = append(result.Successful, studentID)
	}
	return result, nil
}

type TransferResult struct {
	Student         *model.User  `json:"student"`
	FromClass       *model.Class `json:"from_class"`
	ToClass         *model.Class `json:"to_class"`
	ArchivedRecords int64        `json:"archived_records"`
	TransferredAt   time.Time    `json:"transferred_at"`
}

// Transfer 学生必须当前就在 fromClassID 中
func (s *EnrollmentService) Transfer(ctx context.Context, studentID, fromClassID, toClassID string) (*TransferResult, error) {
	if fromClassID == "" || toClassID == "" {
		return nil, util.NewError(util.ErrInvalidInput, "fromClassId and toClassId are required")
	}
	if fromClassID == toClassID {
		return nil, util.NewError(util.ErrInvalidInput, "source and target class must differ")
	}

	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !student.InClass(fromClassID) {
		return nil, util.NewError(util.ErrInvalidInput, "student is not in the source class")
	}

	fromClass, err := s.Classes.FindByID(ctx, fromClassID)
	if err != nil {
		return nil, orNotFound(err, util.ErrClassNotFound)
	}
	toClass, err := s.ResolveClass(ctx, ClassByID(toClassID))
	if err != nil {
		return nil, err
	}

	if err := s.Users.SetClass(ctx, student.ID, &toClass.ID); err != nil {
		return nil, orNotFound(err, util.ErrStudentNotFound)
	}
	now := s.Clock.now()
	student.ClassID = &toClass.ID
	monitoring.EnrollmentCounter.WithLabelValues("transfer", "success").Inc()

	archived, err := s.Progress.ArchiveByStudent(ctx, student.ID, now)
	if err != nil {
		logger.Log.Warn("Failed to archive progress after transfer", zap.String("studentId", student.ID), zap.Error(err))
	}
	s.bootstrapAttendance(ctx, student.ID, toClass.ID)

	logger.Log.Info("Student transferred",
		zap.String("studentId", student.ID),
		zap.String("from", fromClass.ClassName),
		zap.String("to", toClass.ClassName))

	return &TransferResult{
		Student:         student,
		FromClass:       fromClass,
		ToClass:         toClass,
		ArchivedRecords: archived,
		TransferredAt:   now,
	}, nil
}

type EnrollmentStats struct {
	TotalSubjects        int `json:"total_subjects"`
	CompletedLessons     int `json:"completed_lessons"`
	AverageQuizScore     int `json:"average_quiz_score"`
	AttendancePercentage int `json:"attendance_percentage"`
}

type EnrollmentInfo struct {
	Class *model.Class    `json:"class"`
	Stats EnrollmentStats `json:"stats"`
	// EnrolledAt 取账号最近一次变更时间
	EnrolledAt time.Time `json:"enrolled_at"`
}

// GetEnrollment 学生当前班级及学习统计
func (s *EnrollmentService) GetEnrollment(ctx context.Context, studentID string) (*EnrollmentInfo, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.ClassID == nil {
		return nil, util.ErrStudentNotEnrolled
	}
	class, err := s.Classes.FindByID(ctx, *student.ClassID)
	if err != nil {
		return nil, orNotFound(err, util.ErrClassNotFound)
	}

	stats, err := s.studentStats(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.Subjects.FindByClass(ctx, class.ID, true)
	if err != nil {
		return nil, err
	}
	stats.TotalSubjects = len(subjects)

	return &EnrollmentInfo{Class: class, Stats: stats, EnrolledAt: student.UpdatedAt}, nil
}

func (s *EnrollmentService) studentStats(ctx context.Context, studentID string) (EnrollmentStats, error) {
	var stats EnrollmentStats

	completed, err := s.Progress.CountAllCompleted(ctx, studentID)
	if err != nil {
		return stats, err
	}
	attempts, err := s.Attempts.FindByStudent(ctx, studentID)
	if err != nil {
		return stats, err
	}
	stats.CompletedLessons = int(completed)
	stats.AverageQuizScore = AverageScore(attempts)

	if s.Attendance != nil {
		attendance, err := s.Attendance.ForStudent(ctx, studentID)
		if err != nil {
			return stats, err
		}
		stats.AttendancePercentage = attendance.Summary.Percentage
	}
	return stats, nil
}

type RosterEntry struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	LastLogin *time.Time      `json:"last_login,omitempty"`
	Stats     EnrollmentStats `json:"stats"`
}

type ClassRoster struct {
	Class    *model.Class  `json:"class"`
	Students []RosterEntry `json:"students"`
}

// ClassRoster 班级学生名单；教师只能查看自己负责的班级，管理员不受限
func (s *EnrollmentService) ClassRoster(ctx context.Context, caller *util.Claims, classID string) (*ClassRoster, error) {
	class, err := s.Classes.FindByID(ctx, classID)
	if err != nil {
		return nil, orNotFound(err, util.ErrClassNotFound)
	}
	if caller.Role == model.Teacher && (class.TeacherID == nil || *class.TeacherID != caller.UserID) {
		return nil, util.NewError(util.ErrForbidden, "not the teacher of this class")
	}

	students, err := s.Users.FindByClass(ctx, class.ID, model.Student)
	if err != nil {
		return nil, err
	}
	subjects, err := s.Subjects.FindByClass(ctx, class.ID, true)
	if err != nil {
		return nil, err
	}

	roster := &ClassRoster{Class: class, Students: make([]RosterEntry, 0, len(students))}
	for _, student := range students {
		stats, err := s.studentStats(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		stats.TotalSubjects = len(subjects)
		roster.Students = append(roster.Students, RosterEntry{
			ID:        student.ID,
			Name:      student.Name,
			Email:     student.Email,
			LastLogin: student.LastLogin,
			Stats:     stats,
		})
	}
	return roster, nil
}
