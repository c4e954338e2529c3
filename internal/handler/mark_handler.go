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

// MarkHandler wires internal and external mark submission routes.
type MarkHandler struct {
	internal service.InternalMarkService
	external service.ExternalMarkService
	logger   zerolog.Logger
}

// NewMarkHandler constructs the handler.
func NewMarkHandler(internal service.InternalMarkService, external service.ExternalMarkService, logger zerolog.Logger) *MarkHandler {
	return &MarkHandler{
		internal: internal,
		external: external,
		logger:   logger.With().Str("component", "mark_handler").Logger(),
	}
}

// Register attaches mark endpoints to the router group.
func (h *MarkHandler) Register(router fiber.Router) {
	router.Put("/:id/internal-marks", h.submitInternal)
	router.Get("/:id/internal-marks", h.getInternal)
	router.Put("/:id/external-mark", h.submitExternal)
	router.Get("/:id/external-marks", h.getExternal)
}

func (h *MarkHandler) submitInternal(c *fiber.Ctx) error {
	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InternalMarksRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.internal.Submit(c.Context(), examID, payload, examinerRefFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "internal marks submitted", record)
}

func (h *MarkHandler) getInternal(c *fiber.Ctx) error {
	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	record, err := h.internal.Get(c.Context(), examID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "internal marks retrieved", record)
}

func (h *MarkHandler) submitExternal(c *fiber.Ctx) error {
	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ExternalMarkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.external.Submit(c.Context(), examID, payload, examinerRefFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "external mark submitted", record)
}

func (h *MarkHandler) getExternal(c *fiber.Ctx) error {
	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	record, err := h.external.Get(c.Context(), examID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "external marks retrieved", record)
}

func (h *MarkHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "exam not found")
	case errors.Is(err, service.ErrUnauthorizedExaminer):
		return utils.SendError(c, fiber.StatusForbidden, "examiner not authorized for this exam")
	case errors.Is(err, service.ErrMarksFrozen):
		return utils.SendError(c, fiber.StatusForbidden, "marks are frozen by an approved semester")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
