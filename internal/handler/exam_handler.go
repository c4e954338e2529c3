package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/examcore-api/internal/dto"
	"github.com/campushub/examcore-api/internal/service"
	"github.com/campushub/examcore-api/internal/utils"
)

// ExamHandler wires exam read routes and the admin improvement lifecycle.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register attaches exam read endpoints to the router group.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Get("/:id/status", h.status)
	router.Get("/:id/score", h.score)
}

// RegisterAdmin attaches the improvement-exam lifecycle to the admin group.
func (h *ExamHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/exams/improvement", h.createImprovement)
	router.Delete("/exams/:id", h.deleteImprovement)
}

func (h *ExamHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	exam, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exam retrieved", exam)
}

func (h *ExamHandler) status(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := h.service.Status(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exam status retrieved", status)
}

func (h *ExamHandler) score(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	score, err := h.service.Score(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "external score retrieved", score)
}

func (h *ExamHandler) createImprovement(c *fiber.Ctx) error {
	var payload dto.ImprovementCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exam, err := h.service.CreateImprovement(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "improvement exam created", exam)
}

func (h *ExamHandler) deleteImprovement(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteImprovement(c.Context(), id, activityActorFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "improvement exam deleted", fiber.Map{"id": id})
}

func (h *ExamHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "exam not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrNoRegularExam):
		return utils.SendError(c, fiber.StatusNotFound, "no regular exam exists for this course and student")
	case errors.Is(err, service.ErrDuplicateImprovement):
		return utils.SendError(c, fiber.StatusConflict, "improvement exam already exists")
	case errors.Is(err, service.ErrNotImprovementExam):
		return utils.SendError(c, fiber.StatusConflict, "exam is not an improvement exam")
	case errors.Is(err, service.ErrImprovementHasMarks):
		return utils.SendError(c, fiber.StatusConflict, "improvement exam has submitted marks")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
