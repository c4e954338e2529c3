package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campushub/examcore-api/internal/config"
	"github.com/campushub/examcore-api/internal/handler"
	"github.com/campushub/examcore-api/internal/middleware"
	"github.com/campushub/examcore-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	ExamHandler       *handler.ExamHandler
	MarkHandler       *handler.MarkHandler
	ApprovalHandler   *handler.ApprovalHandler
	ReportHandler     *handler.ReportHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())
	api.Get("/grading/scale", handler.GradeScale())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AssignmentHandler != nil || deps.ActivityHandler != nil || deps.ExamHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(handler.RoleAdmin))
		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.Register(admin.Group("/assignments"))
		}
		if deps.ExamHandler != nil {
			deps.ExamHandler.RegisterAdmin(admin)
		}
		if deps.ActivityHandler != nil {
			deps.ActivityHandler.Register(admin.Group("/activities"))
		}
	}

	if deps.ExamHandler != nil || deps.MarkHandler != nil {
		exams := api.Group("/exams", jwtMiddleware)
		if deps.MarkHandler != nil {
			marks := exams.Group("",
				middleware.RateLimit("marks", 60, time.Minute),
				middleware.RequireRole(
					handler.RoleAdmin,
					handler.RoleInternalExaminer,
					handler.RoleExternalExaminer,
				))
			deps.MarkHandler.Register(marks)
		}
		if deps.ExamHandler != nil {
			deps.ExamHandler.Register(exams)
		}
	}

	if deps.ApprovalHandler != nil {
		approvals := api.Group("/approvals", jwtMiddleware, middleware.RequireRole(
			handler.RoleAdmin,
			handler.RolePresident,
		))
		deps.ApprovalHandler.Register(approvals)
	}

	if deps.ReportHandler != nil {
		students := api.Group("/students", jwtMiddleware)
		deps.ReportHandler.Register(students)
	}
}
