package app

import (
	"rural_lms_backend/docs"
	"rural_lms_backend/internal/config"
	"rural_lms_backend/internal/middleware"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/util"
	"rural_lms_backend/pkg/logger"
	"rural_lms_backend/pkg/monitoring"
	"rural_lms_backend/pkg/security"
	"rural_lms_backend/pkg/tracing"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	if err := util.RegisterValidators(); err != nil {
		logger.Log.Error("Failed to register validators", zap.Error(err))
	}

	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())

	if cfg.Server.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 实时公告，允许 query 传 token
	router.GET("/api/announcements/stream", middleware.StreamAuthMiddleware(cfg.JWT.Secret), c.announcement.Stream)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		a.registerCommonRoutes(authGroup, c)

		// 学生接口
		a.registerStudentRoutes(authGroup, c)

		// 教师接口
		a.registerTeacherRoutes(authGroup, c)

		// 管理员接口
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}
}

// 所有已登录角色可用
func (a *App) registerCommonRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile", c.auth.UpdateProfile)
	rg.GET("/classes", c.catalog.ListClasses)
	rg.GET("/announcements", c.announcement.List)
	rg.POST("/announcements", middleware.RoleMiddleware(model.Teacher, model.Admin), c.announcement.Create)
	rg.POST("/class/select", middleware.RoleMiddleware(model.Student), c.enrollment.SelectClass)
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("/student")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.GET("/dashboard", c.dashboard.StudentDashboard)
		student.GET("/enrollment", c.enrollment.GetEnrollment)
		student.GET("/subjects", c.catalog.StudentSubjects)

		// 测验
		student.GET("/subjects/:subjectId/quizzes", c.quiz.ListBySubject)
		student.POST("/quizzes/:quizId/start", c.quiz.Start)
		student.POST("/quizzes/attempt/:attemptId/submit", c.quiz.Submit)
		student.GET("/quizzes/attempts", c.quiz.ListAttempts)

		// 课时
		student.GET("/lessons/:lessonId", c.lesson.Get)
		student.POST("/lessons/:lessonId/complete", c.lesson.Complete)
		student.POST("/lessons/:lessonId/progress", c.lesson.UpdateProgress)

		student.GET("/attendance", c.attendance.Mine)

		student.POST("/support", c.support.Create)
		student.GET("/support", c.support.Mine)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.GET("/dashboard", middleware.RoleMiddleware(model.Teacher), c.dashboard.TeacherDashboard)
		teacher.GET("/classes/:classId/students", c.enrollment.ClassRoster)

		teacher.POST("/subjects", c.catalog.CreateSubject)
		teacher.POST("/lessons", c.catalog.CreateLesson)
		teacher.POST("/lessons/:lessonId/material", c.catalog.UploadMaterial)
		teacher.POST("/quizzes", c.catalog.CreateQuiz)

		teacher.POST("/attendance", c.attendance.Mark)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/dashboard", c.dashboard.AdminDashboard)
		admin.GET("/stats", c.dashboard.Stats)

		admin.POST("/classes", c.catalog.CreateClass)

		// 入班与升班
		admin.POST("/enroll", c.enrollment.AdminEnroll)
		admin.POST("/enroll/bulk", c.enrollment.BulkEnroll)
		admin.POST("/transfer", c.enrollment.Transfer)
		admin.POST("/promote", c.enrollment.Promote)

		admin.GET("/support", c.support.List)
		admin.PATCH("/support/:id", c.support.UpdateStatus)
	}
}
