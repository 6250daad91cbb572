package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskflow/internal/access"
	"taskflow/internal/config"
	"taskflow/internal/handler"
	"taskflow/internal/middleware"
	"taskflow/internal/repository"
	"taskflow/internal/service"
	"taskflow/internal/storage"
	"taskflow/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Log    *zap.Logger
}

func Init(cfg *config.Config, log *zap.Logger) (*Server, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	log.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations applied")

	fileStore, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init upload storage: %w", err)
	}

	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	accessSvc := access.NewService(projectRepo, membershipRepo)
	hub := stream.NewHub(log)
	recorder := service.NewActivityRecorder(activityRepo, log)
	notifier := service.NewNotifier(notificationRepo, hub, log)

	jwtExpiry := time.Duration(cfg.JWTExpiryHours) * time.Hour

	// Handlers
	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret, jwtExpiry)
	projectHandler := handler.NewProjectHandler(projectRepo, membershipRepo, userRepo, accessSvc, recorder)
	memberHandler := handler.NewMemberHandler(membershipRepo, userRepo, accessSvc, recorder, notifier)
	taskHandler := handler.NewTaskHandler(taskRepo, assignmentRepo, membershipRepo, userRepo, accessSvc, recorder, notifier)
	commentHandler := handler.NewCommentHandler(commentRepo, taskRepo, assignmentRepo, accessSvc, recorder, notifier)
	attachmentHandler := handler.NewAttachmentHandler(attachmentRepo, taskRepo, fileStore, accessSvc, recorder, log)
	activityHandler := handler.NewActivityHandler(activityRepo, accessSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, hub, notifier, cfg.JWTSecret)
	dashboardHandler := handler.NewDashboardHandler(projectRepo, membershipRepo, taskRepo, log)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	// SSE clients cannot send an Authorization header; the stream endpoint
	// authenticates itself via a token query parameter.
	r.GET("/notifications/stream", notificationHandler.Stream)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/profile", userHandler.Profile)

		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.List)
		authorized.GET("/projects/:id", projectHandler.Get)
		authorized.DELETE("/projects/:id", projectHandler.Delete)

		// Membership routes
		authorized.GET("/projects/:id/members", memberHandler.List)
		authorized.POST("/projects/:id/members", memberHandler.Share)
		authorized.PUT("/projects/:id/members/:memberId/role", memberHandler.UpdateRole)
		authorized.DELETE("/projects/:id/members/:memberId", memberHandler.Remove)

		// Task routes
		authorized.GET("/projects/:id/tasks", taskHandler.List)
		authorized.POST("/projects/:id/tasks", taskHandler.Create)
		authorized.PUT("/projects/:id/tasks/:taskId", taskHandler.Update)
		authorized.DELETE("/projects/:id/tasks/:taskId", taskHandler.Delete)
		authorized.GET("/projects/:id/tasks/:taskId/assignees", taskHandler.Assignees)
		authorized.POST("/projects/:id/tasks/:taskId/assign", taskHandler.Assign)
		authorized.DELETE("/projects/:id/tasks/:taskId/assign/:userId", taskHandler.Unassign)

		// Comment routes
		authorized.GET("/projects/:id/tasks/:taskId/comments", commentHandler.List)
		authorized.POST("/projects/:id/tasks/:taskId/comments", commentHandler.Create)
		authorized.PUT("/projects/:id/tasks/:taskId/comments/:commentId", commentHandler.Update)
		authorized.DELETE("/projects/:id/tasks/:taskId/comments/:commentId", commentHandler.Delete)

		// Attachment routes
		authorized.GET("/projects/:id/tasks/:taskId/attachments", attachmentHandler.List)
		authorized.POST("/projects/:id/tasks/:taskId/attachments", attachmentHandler.Upload)
		authorized.GET("/projects/:id/tasks/:taskId/attachments/:attachmentId", attachmentHandler.Download)
		authorized.DELETE("/projects/:id/tasks/:taskId/attachments/:attachmentId", attachmentHandler.Delete)

		// Activity feed
		authorized.GET("/projects/:id/activity", activityHandler.List)

		// Notification routes
		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/unread/count", notificationHandler.UnreadCount)
		authorized.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		authorized.PUT("/notifications/read-all", notificationHandler.MarkAllRead)

		// Dashboard
		authorized.GET("/dashboard/stats", dashboardHandler.Stats)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		Log:    log,
	}, nil
}

func runMigrations(cfg *config.Config) error {
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	m, err := migrate.New("file://"+cfg.MigrationsDir, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Log.Info("server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.Fatal("failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Log.Fatal("server forced to shutdown", zap.Error(err))
	}

	s.Log.Info("server exited properly")
}
