package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/service"
)

// Role names carried in JWT claims.
const (
	RoleAdmin            = "admin"
	RoleInternalExaminer = "internal_examiner"
	RoleExternalExaminer = "external_examiner"
	RolePresident        = "president"
	RoleStudent          = "student"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryBool(c *fiber.Ctx, key string) bool {
	value := strings.TrimSpace(c.Query(key))
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return parsed
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// examinerKindForRole maps a JWT role to the examiner identity space it
// authenticates. Presidents and admins are faculty members, so their
// reference lives in the internal space.
func examinerKindForRole(role string) models.ExaminerKind {
	if role == RoleExternalExaminer {
		return models.ExaminerKindExternal
	}
	return models.ExaminerKindInternal
}

func examinerRefFromContext(c *fiber.Ctx) models.ExaminerRef {
	return models.ExaminerRef{
		ExaminerID: userIDFromContext(c),
		Kind:       examinerKindForRole(userRoleFromContext(c)),
	}
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		ID:   userIDFromContext(c),
		Kind: string(examinerKindForRole(userRoleFromContext(c))),
	}
}
