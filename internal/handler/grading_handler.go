package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushub/examcore-api/internal/grading"
	"github.com/campushub/examcore-api/internal/utils"
)

// GradeScale exposes the letter-grade bands so clients render marks with the
// same thresholds the engine grades with.
func GradeScale() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "grade scale retrieved", grading.Scale())
	}
}
