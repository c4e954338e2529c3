package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/examcore-api/internal/config"
	"github.com/campushub/examcore-api/internal/database"
	"github.com/campushub/examcore-api/internal/handler"
	"github.com/campushub/examcore-api/internal/middleware"
	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/repository"
	"github.com/campushub/examcore-api/internal/router"
	"github.com/campushub/examcore-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.InternalExaminer{},
		&models.ExternalExaminer{},
		&models.Student{},
		&models.Course{},
		&models.Semester{},
		&models.ExamCommittee{},
		&models.Enrollment{},
		&models.CourseAssignment{},
		&models.Exam{},
		&models.InternalMarkRecord{},
		&models.ExternalMarkRecord{},
		&models.ApprovalStatus{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	directoryRepo := repository.NewDirectoryRepository(db)
	assignmentRepo := repository.NewCourseAssignmentRepository(db)
	examRepo := repository.NewExamRepository(db)
	markRepo := repository.NewMarkLedgerRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	reportCache := service.NewReportCache(redisClient, cfg.ReportCacheTTL, logger)
	publisher := service.NewPublicationPublisher(natsConn, cfg.PublicationSubject, logger)

	assignmentService := service.NewAssignmentService(assignmentRepo, examRepo, directoryRepo, validate, activityService, logger)
	examService := service.NewExamService(examRepo, assignmentRepo, validate, activityService, logger)
	internalMarkService := service.NewInternalMarkService(examRepo, markRepo, validate, activityService, logger)
	externalMarkService := service.NewExternalMarkService(examRepo, markRepo, validate, activityService, cfg.EscalationThreshold, logger)
	approvalService := service.NewApprovalService(approvalRepo, directoryRepo, validate, publisher, reportCache, activityService, logger)
	reportService := service.NewReportService(examRepo, approvalRepo, directoryRepo, reportCache, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		ExamHandler:       handler.NewExamHandler(examService, logger),
		MarkHandler:       handler.NewMarkHandler(internalMarkService, externalMarkService, logger),
		ApprovalHandler:   handler.NewApprovalHandler(approvalService, logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
