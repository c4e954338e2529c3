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

// ApprovalHandler wires approval state-machine routes.
type ApprovalHandler struct {
	service service.ApprovalService
	logger  zerolog.Logger
}

// NewApprovalHandler constructs the handler.
func NewApprovalHandler(service service.ApprovalService, logger zerolog.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		service: service,
		logger:  logger.With().Str("component", "approval_handler").Logger(),
	}
}

// Register attaches approval endpoints to the router group.
func (h *ApprovalHandler) Register(router fiber.Router) {
	router.Get("/:committeeID", h.listByCommittee)
	router.Get("/:committeeID/:semesterID", h.get)
	router.Put("/:committeeID/:semesterID", h.transition)
}

func (h *ApprovalHandler) transition(c *fiber.Ctx) error {
	committeeID, err := parseUintParam(c, "committeeID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	semesterID, err := parseUintParam(c, "semesterID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ApprovalTransitionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	approval, err := h.service.Transition(c.Context(), committeeID, semesterID, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "approval transition applied", approval)
}

func (h *ApprovalHandler) get(c *fiber.Ctx) error {
	committeeID, err := parseUintParam(c, "committeeID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	semesterID, err := parseUintParam(c, "semesterID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	approval, err := h.service.Get(c.Context(), committeeID, semesterID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "approval retrieved", approval)
}

func (h *ApprovalHandler) listByCommittee(c *fiber.Ctx) error {
	committeeID, err := parseUintParam(c, "committeeID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	approvals, err := h.service.ListByCommittee(c.Context(), committeeID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "approvals retrieved", approvals)
}

func (h *ApprovalHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCommitteeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "committee not found")
	case errors.Is(err, service.ErrApprovalNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "approval record not found")
	case errors.Is(err, service.ErrNotPresident):
		return utils.SendError(c, fiber.StatusForbidden, "only the committee president may transition approval")
	case errors.Is(err, service.ErrApprovalFinal):
		return utils.SendError(c, fiber.StatusConflict, "approved marks cannot be transitioned again")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
