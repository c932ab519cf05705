package controller

import (
	"errors"
	"webauthn_ms/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// principalID reads the authenticated user id placed in locals by the auth
// middleware. JWT numeric claims decode as float64.
func principalID(c *fiber.Ctx) (uint, error) {
	raw, ok := c.Locals("userId").(float64)
	if !ok {
		return 0, errors.New("missing principal")
	}
	return uint(raw), nil
}

func principalRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}

// ceremonyError maps service errors to HTTP statuses. Every ceremony error
// is terminal; the client restarts at begin.
func ceremonyError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrChallengeExpired),
		errors.Is(err, services.ErrChallengeMismatch),
		errors.Is(err, services.ErrOriginMismatch),
		errors.Is(err, services.ErrRPIDMismatch),
		errors.Is(err, services.ErrAttestationInvalid),
		errors.Is(err, services.ErrSignatureInvalid),
		errors.Is(err, services.ErrCloneSuspected):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNoCredentials),
		errors.Is(err, services.ErrCredentialNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicateCredential):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"status": "error", "error": err.Error()})
}
