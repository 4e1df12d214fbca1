package service

import (
	"context"
	"encoding/json"
	"errors"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
	"rural_lms_backend/pkg/logger"
	"rural_lms_backend/pkg/monitoring"
	"rural_lms_backend/pkg/tracing"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type DashboardService struct {
	Users         repository.UserStore
	Classes       repository.ClassStore
	Subjects      repository.SubjectStore
	Lessons       repository.LessonStore
	Progress      repository.ProgressStore
	Quizzes       repository.QuizStore
	Attempts      repository.AttemptStore
	Attendance    repository.AttendanceStore
	Announcements repository.AnnouncementStore
	Support       repository.SupportStore
	// Cache 为 nil 时不缓存管理端统计
	Cache repository.StatsCache
	Clock Clock
}

func NewDashboardService(stores *repository.Stores, cache repository.StatsCache) *DashboardService {
	return &DashboardService{
		Users:         stores.Users,
		Classes:       stores.Classes,
		Subjects:      stores.Subjects,
		Lessons:       stores.Lessons,
		Progress:      stores.Progress,
		Quizzes:       stores.Quizzes,
		Attempts:      stores.Attempts,
		Attendance:    stores.Attendance,
		Announcements: stores.Announcements,
		Support:       stores.Support,
		Cache:         cache,
	}
}

// sections 并发执行互不依赖的统计，单个失败只降级该部分
type sections struct {
	ctx       context.Context
	dashboard string
	wg        sync.WaitGroup
}

func (s *sections) run(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, span := tracing.StartSpan(s.ctx, "dashboard."+name, attribute.String("dashboard", s.dashboard))
		err := fn(ctx)
		tracing.EndSpan(span, err)
		if err != nil {
			monitoring.DashboardSectionFailures.WithLabelValues(name).Inc()
			logger.Log.Warn("Dashboard section degraded",
				zap.String("dashboard", s.dashboard),
				zap.String("section", name),
				zap.Error(err))
		}
	}()
}

func (s *sections) wait() {
	s.wg.Wait()
}

type DashboardStudent struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Role       model.UserRole `json:"role"`
	ClassName  string         `json:"class_name"`
	GradeLevel int            `json:"grade_level"`
}

type QuizStats struct {
	Attempted    int `json:"attempted"`
	AverageScore int `json:"averageScore"`
}

type AnnouncementView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type SupportSummary struct {
	OpenRequests int64 `json:"openRequests"`
}

// StudentDashboard 学生首页；未选班时只输出选班提示
type StudentDashboard struct {
	NeedsClassSelection bool
	Student             DashboardStudent
	Subjects            []SubjectProgress
	ContinueLearning    *ContinueLearning
	QuizSummary         QuizStats
	Attendance          AttendanceSummary
	Announcements       []AnnouncementView
	Support             SupportSummary
}

type classSelectionPrompt struct {
	NeedsClassSelection bool `json:"needsClassSelection"`
	Student             struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"student"`
}

func (d StudentDashboard) MarshalJSON() ([]byte, error) {
	if d.NeedsClassSelection {
		var prompt classSelectionPrompt
		prompt.NeedsClassSelection = true
		prompt.Student.ID = d.Student.ID
		prompt.Student.Name = d.Student.Name
		prompt.Student.Email = d.Student.Email
		return json.Marshal(prompt)
	}
	return json.Marshal(struct {
		Student          DashboardStudent   `json:"student"`
		Subjects         []SubjectProgress  `json:"subjects"`
		ContinueLearning *ContinueLearning  `json:"continueLearning"`
		QuizSummary      QuizStats          `json:"quizSummary"`
		Attendance       AttendanceSummary  `json:"attendance"`
		Announcements    []AnnouncementView `json:"announcements"`
		Support          SupportSummary     `json:"support"`
	}{
		Student:          d.Student,
		Subjects:         d.Subjects,
		ContinueLearning: d.ContinueLearning,
		QuizSummary:      d.QuizSummary,
		Attendance:       d.Attendance,
		Announcements:    d.Announcements,
		Support:          d.Support,
	})
}

// StudentDashboard 只有身份查询失败才返回错误
func (s *DashboardService) StudentDashboard(ctx context.Context, studentID string) (*StudentDashboard, error) {
	student, err := s.Users.FindByID(ctx, studentID)
	if err != nil {
		return nil, orNotFound(err, util.ErrStudentNotFound)
	}

	dashboard := &StudentDashboard{
		Student: DashboardStudent{
			ID:    student.ID,
			Name:  student.Name,
			Email: student.Email,
			Role:  student.Role,
		},
	}

	var class *model.Class
	if student.ClassID != nil {
		class, err = s.Classes.FindByID(ctx, *student.ClassID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	// 班级引用悬空与未选班同样处理
	if class == nil {
		dashboard.NeedsClassSelection = true
		return dashboard, nil
	}
	dashboard.Student.ClassName = class.ClassName
	dashboard.Student.GradeLevel = class.GradeLevel

	dashboard.Subjects = []SubjectProgress{}
	dashboard.Announcements = []AnnouncementView{}

	group := &sections{ctx: ctx, dashboard: "student"}
	group.run("courses", func(ctx context.Context) error {
		view, err := loadCourseView(ctx, s.Subjects, s.Lessons, s.Progress, student.ID, class.ID)
		if err != nil {
			return err
		}
		dashboard.Subjects = view.subjectProgress()
		dashboard.ContinueLearning = view.continueLearning()
		return nil
	})
	group.run("quizzes", func(ctx context.Context) error {
		attempts, err := s.Attempts.FindByStudent(ctx, student.ID)
		if err != nil {
			return err
		}
		dashboard.QuizSummary = QuizStats{Attempted: len(attempts), AverageScore: AverageScore(attempts)}
		return nil
	})
	group.run("attendance", func(ctx context.Context) error {
		records, err := s.Attendance.FindByStudent(ctx, student.ID)
		if err != nil {
			return err
		}
		dashboard.Attendance = SummarizeAttendance(records)
		return nil
	})
	group.run("announcements", func(ctx context.Context) error {
		announcements, err := s.visibleAnnouncements(ctx, model.Student, class.ID, util.DashboardAnnouncementLimit)
		if err != nil {
			return err
		}
		dashboard.Announcements = announcements
		return nil
	})
	group.run("support", func(ctx context.Context) error {
		open, err := s.Support.CountByUserAndStatus(ctx, student.ID, model.SupportOpen)
		if err != nil {
			return err
		}
		dashboard.Support = SupportSummary{OpenRequests: open}
		return nil
	})
	group.wait()

	return dashboard, nil
}

func (s *DashboardService) visibleAnnouncements(ctx context.Context, role model.UserRole, classID string, limit int) ([]AnnouncementView, error) {
	now := s.Clock.now()
	announcements, err := s.Announcements.FindActive(ctx, now)
	if err != nil {
		return nil, err
	}
	views := make([]AnnouncementView, 0, limit)
	for i := range announcements {
		if len(views) == limit {
			break
		}
		if announcements[i].VisibleTo(role, classID, now) {
			views = append(views, toAnnouncementView(&announcements[i]))
		}
	}
	return views, nil
}

func toAnnouncementView(a *model.Announcement) AnnouncementView {
	view := AnnouncementView{
		ID:        a.ID,
		Title:     a.Title,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
	if a.Author != nil {
		view.Author = a.Author.Name
	}
	return view
}

type TeacherProfile struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  model.UserRole `json:"role"`
}

type TeacherStats struct {
	TotalClasses  int   `json:"totalClasses"`
	TotalStudents int64 `json:"totalStudents"`
}

type TeacherDashboard struct {
	Teacher             TeacherProfile       `json:"teacher"`
	Classes             []model.Class        `json:"classes"`
	Stats               TeacherStats         `json:"stats"`
	RecentAnnouncements []model.Announcement `json:"recentAnnouncements"`
}

func (s *DashboardService) TeacherDashboard(ctx context.Context, teacherID string) (*TeacherDashboard, error) {
	teacher, err := s.Users.FindByID(ctx, teacherID)
	if err != nil {
		return nil, orNotFound(err, util.ErrUserNotFound)
	}

	dashboard := &TeacherDashboard{
		Teacher:             TeacherProfile{ID: teacher.ID, Name: teacher.Name, Email: teacher.Email, Role: teacher.Role},
		Classes:             []model.Class{},
		RecentAnnouncements: []model.Announcement{},
	}

	group := &sections{ctx: ctx, dashboard: "teacher"}
	group.run("classes", func(ctx context.Context) error {
		classes, err := s.Classes.FindByTeacher(ctx, teacher.ID)
		if err != nil {
			return err
		}
		students, err := s.Users.CountByClasses(ctx, classIDs(classes), model.Student)
		if err != nil {
			return err
		}
		if classes != nil {
			dashboard.Classes = classes
		}
		dashboard.Stats = TeacherStats{TotalClasses: len(classes), TotalStudents: students}
		return nil
	})
	group.run("announcements", func(ctx context.Context) error {
		announcements, err := s.Announcements.FindByAuthor(ctx, teacher.ID, util.DashboardAnnouncementLimit)
		if err != nil {
			return err
		}
		if announcements != nil {
			dashboard.RecentAnnouncements = announcements
		}
		return nil
	})
	group.wait()

	return dashboard, nil
}

func classIDs(classes []model.Class) []string {
	ids := make([]string, len(classes))
	for i, class := range classes {
		ids[i] = class.ID
	}
	return ids
}

// AdminStats 管理端统计
type AdminStats struct {
	TotalStudents       int64 `json:"totalStudents"`
	TotalTeachers       int64 `json:"totalTeachers"`
	TotalAdmins         int64 `json:"totalAdmins"`
	TotalClasses        int64 `json:"totalClasses"`
	TotalSubjects       int64 `json:"totalSubjects"`
	TotalLessons        int64 `json:"totalLessons"`
	ActiveQuizzes       int64 `json:"activeQuizzes"`
	OpenSupportRequests int64 `json:"openSupportRequests"`
}

// BasicStats /admin/stats 只返回四项
type BasicStats struct {
	TotalStudents int64 `json:"totalStudents"`
	TotalTeachers int64 `json:"totalTeachers"`
	TotalClasses  int64 `json:"totalClasses"`
	TotalSubjects int64 `json:"totalSubjects"`
}

type UserActivity struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      model.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	LastLogin *time.Time     `json:"last_login,omitempty"`
}

type AdminDashboard struct {
	Stats        AdminStats     `json:"stats"`
	RecentUsers  []UserActivity `json:"recentUsers"`
	RecentLogins []UserActivity `json:"recentLogins"`
}

const adminStatsCacheKey = "admin_dashboard"

// AdminStats 优先读缓存，缓存故障时直接查库
func (s *DashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats
	if s.Cache != nil {
		hit, err := s.Cache.Get(ctx, adminStatsCacheKey, &stats)
		if err != nil {
			logger.Log.Warn("Stats cache read failed", zap.Error(err))
		} else if hit {
			return &stats, nil
		}
	}

	counters := []struct {
		dst   *int64
		count func(context.Context) (int64, error)
	}{
		{&stats.TotalStudents, func(ctx context.Context) (int64, error) { return s.Users.CountByRole(ctx, model.Student) }},
		{&stats.TotalTeachers, func(ctx context.Context) (int64, error) { return s.Users.CountByRole(ctx, model.Teacher) }},
		{&stats.TotalAdmins, func(ctx context.Context) (int64, error) { return s.Users.CountByRole(ctx, model.Admin) }},
		{&stats.TotalClasses, s.Classes.CountActive},
		{&stats.TotalSubjects, s.Subjects.CountActive},
		{&stats.TotalLessons, s.Lessons.CountActive},
		{&stats.ActiveQuizzes, s.Quizzes.CountActive},
		{&stats.OpenSupportRequests, func(ctx context.Context) (int64, error) {
			return s.Support.CountByStatus(ctx, model.SupportOpen)
		}},
	}
	for _, counter := range counters {
		n, err := counter.count(ctx)
		if err != nil {
			return nil, err
		}
		*counter.dst = n
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, adminStatsCacheKey, &stats); err != nil {
			logger.Log.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return &stats, nil
}

func (s *DashboardService) BasicStats(ctx context.Context) (*BasicStats, error) {
	stats, err := s.AdminStats(ctx)
	if err != nil {
		return nil, err
	}
	return &BasicStats{
		TotalStudents: stats.TotalStudents,
		TotalTeachers: stats.TotalTeachers,
		TotalClasses:  stats.TotalClasses,
		TotalSubjects: stats.TotalSubjects,
	}, nil
}

func (s *DashboardService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	stats, err := s.AdminStats(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &AdminDashboard{
		Stats:        *stats,
		RecentUsers:  []UserActivity{},
		RecentLogins: []UserActivity{},
	}

	group := &sections{ctx: ctx, dashboard: "admin"}
	group.run("recent_users", func(ctx context.Context) error {
		users, err := s.Users.Recent(ctx, util.RecentUsersLimit)
		if err != nil {
			return err
		}
		dashboard.RecentUsers = toUserActivity(users)
		return nil
	})
	group.run("recent_logins", func(ctx context.Context) error {
		users, err := s.Users.RecentLogins(ctx, util.RecentUsersLimit)
		if err != nil {
			return err
		}
		dashboard.RecentLogins = toUserActivity(users)
		return nil
	})
	group.wait()

	return dashboard, nil
}

func toUserActivity(users []model.User) []UserActivity {
	activity := make([]UserActivity, 0, len(users))
	for _, u := range users {
		activity = append(activity, UserActivity{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
			LastLogin: u.LastLogin,
		})
	}
	return activity
}
