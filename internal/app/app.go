package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"rural_lms_backend/internal/config"
	"rural_lms_backend/internal/controller"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/repository/memory"
	"rural_lms_backend/internal/service"
	"rural_lms_backend/pkg/configwatcher"
	"rural_lms_backend/pkg/database"
	"rural_lms_backend/pkg/logger"
	"rural_lms_backend/pkg/monitoring"
	"rural_lms_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services        *services
	hub             *service.AnnouncementHub
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

// Deps 是构建路由所需的外部资源，测试时可全部使用内存实现
type Deps struct {
	Stores  *repository.Stores
	Cache   repository.StatsCache
	Storage service.StorageProvider
	DB      *gorm.DB
	Redis   *redis.Client
}

type services struct {
	auth         *service.AuthService
	attendance   *service.AttendanceService
	enrollment   *service.EnrollmentService
	promotion    *service.PromotionService
	catalog      *service.CatalogService
	lesson       *service.LessonService
	quiz         *service.QuizService
	dashboard    *service.DashboardService
	announcement *service.AnnouncementService
	support      *service.SupportService
}

type controllers struct {
	auth         *controller.AuthController
	enrollment   *controller.EnrollmentController
	catalog      *controller.CatalogController
	lesson       *controller.LessonController
	quiz         *controller.QuizController
	attendance   *controller.AttendanceController
	dashboard    *controller.DashboardController
	announcement *controller.AnnouncementController
	support      *controller.SupportController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 把重新加载的配置分发给已注册的回调
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func initServices(cfg *config.Config, deps *Deps) *services {
	s := &services{}

	s.auth = service.NewAuthService(deps.Stores.Users, cfg)
	s.attendance = service.NewAttendanceService(deps.Stores.Users, deps.Stores.Attendance)
	s.enrollment = service.NewEnrollmentService(deps.Stores, s.attendance, cfg.Enrollment)
	s.promotion = service.NewPromotionService(deps.Stores, s.enrollment, cfg.Promotion)
	s.catalog = service.NewCatalogService(deps.Stores)
	s.lesson = service.NewLessonService(deps.Stores, deps.Storage)
	s.quiz = service.NewQuizService(deps.Stores.Quizzes, deps.Stores.Attempts)
	s.dashboard = service.NewDashboardService(deps.Stores, deps.Cache)
	s.announcement = service.NewAnnouncementService(deps.Stores)
	s.announcement.Hub = service.NewAnnouncementHub()
	s.support = service.NewSupportService(deps.Stores.Support)

	return s
}

func initControllers(s *services, deps *Deps) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		enrollment:   controller.NewEnrollmentController(s.enrollment, s.promotion),
		catalog:      controller.NewCatalogController(s.catalog, s.lesson),
		lesson:       controller.NewLessonController(s.lesson),
		quiz:         controller.NewQuizController(s.quiz),
		attendance:   controller.NewAttendanceController(s.attendance),
		dashboard:    controller.NewDashboardController(s.dashboard),
		announcement: controller.NewAnnouncementController(s.announcement),
		support:      controller.NewSupportController(s.support),
		health:       controller.NewHealthController(deps.DB, deps.Redis),
	}
}

// New 用给定的依赖组装服务和路由，不做任何外部连接
func New(cfg *config.Config, deps *Deps) *App {
	if deps.Storage == nil {
		deps.Storage = &service.LocalStorageProvider{Root: cfg.Storage.LocalPath}
	}

	app := &App{
		Config: cfg,
		DB:     deps.DB,
		Redis:  deps.Redis,
	}

	app.services = initServices(cfg, deps)
	app.hub = app.services.announcement.Hub
	controllers := initControllers(app.services, deps)

	// 热更新入班与升班策略
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.services.enrollment.SetPolicy(newCfg.Enrollment)
		app.services.promotion.SetPolicy(newCfg.Promotion)
		logger.Log.Info("Enrollment and promotion policies reloaded",
			zap.Bool("bootstrapAttendance", newCfg.Enrollment.BootstrapAttendance),
			zap.Bool("requireCompletion", newCfg.Promotion.RequireCompletion),
			zap.Float64("completionThreshold", newCfg.Promotion.CompletionThreshold),
		)
	})

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "" || cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

// openStores 按 database.driver 选择存储实现
func openStores(cfg *config.Config) (*repository.Stores, *gorm.DB, error) {
	if cfg.Database.Driver == "memory" {
		logger.Log.Warn("Using in-memory storage, data will be lost on restart")
		return memory.NewStores(memory.NewDB()), nil, nil
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewGormStores(db), db, nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	stores, db, err := openStores(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存不是必需的，连接失败时不缓存统计
		logger.Log.Warn("Failed to initialize redis, stats cache disabled", zap.Error(err))
		rdb = nil
	}

	var cache repository.StatsCache
	if rdb != nil {
		cache = repository.NewRedisStatsCache(rdb, cfg.Redis.StatsTTL)
	}

	// 监控初始化
	monitoring.Init()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer("rural-lms", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app := New(cfg, &Deps{
		Stores:  stores,
		Cache:   cache,
		Storage: service.NewStorageProvider(context.Background(), &cfg.Storage),
		DB:      db,
		Redis:   rdb,
	})
	app.tracer = tp

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.services.auth.EnsureAdmin(ctx, cfg.Admin); err != nil {
		logger.Log.Error("Failed to bootstrap admin account", zap.Error(err))
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if a.Config.ConfigFile != "" {
		if err := configwatcher.Watch(watchCtx, a.Config.ConfigFile, a.ApplyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	a.hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
