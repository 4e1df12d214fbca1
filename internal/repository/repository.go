package repository

import (
	"context"
	"errors"
	"rural_lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 所有存储实现统一返回这两个错误，service 层据此判断
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// translate 把 gorm 的错误转换为存储层错误，需要 gorm.Config.TranslateError
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// ascending 生成按列升序的排序子句，列名由方言负责转义（order 是保留字）
func ascending(columns ...string) clause.OrderBy {
	orderBy := clause.OrderBy{}
	for _, column := range columns {
		orderBy.Columns = append(orderBy.Columns, clause.OrderByColumn{Column: clause.Column{Name: column}})
	}
	return orderBy
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	SetClass(ctx context.Context, userID string, classID *string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	CountByRole(ctx context.Context, role model.UserRole) (int64, error)
	FindByClass(ctx context.Context, classID string, role model.UserRole) ([]model.User, error)
	CountByClasses(ctx context.Context, classIDs []string, role model.UserRole) (int64, error)
	Recent(ctx context.Context, limit int) ([]model.User, error)
	RecentLogins(ctx context.Context, limit int) ([]model.User, error)
}

type ClassStore interface {
	Create(ctx context.Context, class *model.Class) error
	FindByID(ctx context.Context, id string) (*model.Class, error)
	FindByName(ctx context.Context, name string) (*model.Class, error)
	// FindActiveByGradeLevel 同一年级多个班级时取 class_name 最小的
	FindActiveByGradeLevel(ctx context.Context, gradeLevel int) (*model.Class, error)
	List(ctx context.Context, activeOnly bool) ([]model.Class, error)
	FindByTeacher(ctx context.Context, teacherID string) ([]model.Class, error)
	CountActive(ctx context.Context) (int64, error)
}

type SubjectStore interface {
	Create(ctx context.Context, subject *model.Subject) error
	FindByID(ctx context.Context, id string) (*model.Subject, error)
	FindByClass(ctx context.Context, classID string, activeOnly bool) ([]model.Subject, error)
	CountActive(ctx context.Context) (int64, error)
}

type LessonStore interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	FindByID(ctx context.Context, id string) (*model.Lesson, error)
	Update(ctx context.Context, lesson *model.Lesson) error
	// FindBySubjects 只返回启用的课时，按 subject、order 排序
	FindBySubjects(ctx context.Context, subjectIDs []string) ([]model.Lesson, error)
	CountActive(ctx context.Context) (int64, error)
}

type ProgressStore interface {
	Upsert(ctx context.Context, progress *model.LessonProgress) error
	Find(ctx context.Context, studentID, lessonID string) (*model.LessonProgress, error)
	CountCompleted(ctx context.Context, studentID string, lessonIDs []string) (int64, error)
	CompletedLessonIDs(ctx context.Context, studentID string, lessonIDs []string) ([]string, error)
	CountAllCompleted(ctx context.Context, studentID string) (int64, error)
	ArchiveByStudent(ctx context.Context, studentID string, at time.Time) (int64, error)
}

type QuizStore interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	// FindByID 连同题目一起返回，题目按 order 排序
	FindByID(ctx context.Context, id string) (*model.Quiz, error)
	FindBySubject(ctx context.Context, subjectID string) ([]model.Quiz, error)
	CountActive(ctx context.Context) (int64, error)
}

type AttemptStore interface {
	Create(ctx context.Context, attempt *model.QuizAttempt) error
	FindByID(ctx context.Context, id string) (*model.QuizAttempt, error)
	Save(ctx context.Context, attempt *model.QuizAttempt) error
	FindByStudent(ctx context.Context, studentID string) ([]model.QuizAttempt, error)
}

type AttendanceStore interface {
	// Upsert 以 (student_id, date) 为键
	Upsert(ctx context.Context, record *model.Attendance) error
	FindByStudent(ctx context.Context, studentID string) ([]model.Attendance, error)
}

type AnnouncementStore interface {
	Create(ctx context.Context, announcement *model.Announcement) error
	// FindActive 返回启用且未过期的公告，最新的在前
	FindActive(ctx context.Context, now time.Time) ([]model.Announcement, error)
	FindByAuthor(ctx context.Context, authorID string, limit int) ([]model.Announcement, error)
}

type SupportStore interface {
	Create(ctx context.Context, request *model.SupportRequest) error
	FindByID(ctx context.Context, id string) (*model.SupportRequest, error)
	Update(ctx context.Context, request *model.SupportRequest) error
	FindByUser(ctx context.Context, userID string) ([]model.SupportRequest, error)
	CountByUserAndStatus(ctx context.Context, userID string, status model.SupportStatus) (int64, error)
	CountByStatus(ctx context.Context, status model.SupportStatus) (int64, error)
	ListByStatus(ctx context.Context, status model.SupportStatus) ([]model.SupportRequest, error)
}

// Stores 聚合所有存储，便于 app 层统一注入
type Stores struct {
	Users         UserStore
	Classes       ClassStore
	Subjects      SubjectStore
	Lessons       LessonStore
	Progress      ProgressStore
	Quizzes       QuizStore
	Attempts      AttemptStore
	Attendance    AttendanceStore
	Announcements AnnouncementStore
	Support       SupportStore
}

// NewGormStores 基于 gorm 构建全部存储
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Users:         NewUserRepository(db),
		Classes:       NewClassRepository(db),
		Subjects:      NewSubjectRepository(db),
		Lessons:       NewLessonRepository(db),
		Progress:      NewProgressRepository(db),
		Quizzes:       NewQuizRepository(db),
		Attempts:      NewAttemptRepository(db),
		Attendance:    NewAttendanceRepository(db),
		Announcements: NewAnnouncementRepository(db),
		Support:       NewSupportRepository(db),
	}
}
