package controller

import (
	"webauthn_ms/dtos/request"
	"webauthn_ms/services"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	LoginLocal(c *fiber.Ctx) error
}

type AuthController struct {
	authService services.IAuthService
}

func NewAuthController(service services.IAuthService) IAuthController {
	return &AuthController{authService: service}
}

func (ac *AuthController) LoginLocal(c *fiber.Ctx) error {
	var req request.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, tokens, err := ac.authService.Login(c.Context(), &req)
	if err != nil {
		return ceremonyError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"username": user.Username,
		"role":     string(user.Role),
		"tokens":   tokens,
	})
}
