package controller

import (
	"net/http"
	"strconv"
	"webauthn_ms/domain"
	"webauthn_ms/dtos/request"
	"webauthn_ms/dtos/response"
	"webauthn_ms/services"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// CeremonyTokenHeader carries the token minted at begin back into complete.
const CeremonyTokenHeader = "X-Ceremony-Token"

type IPasskeyController interface {
	RegisterBegin(c *fiber.Ctx) error
	RegisterComplete(c *fiber.Ctx) error
	AuthenticateBegin(c *fiber.Ctx) error
	AuthenticateComplete(c *fiber.Ctx) error
	ListKeys(c *fiber.Ctx) error
	DeleteKey(c *fiber.Ctx) error
	UsersWithKeys(c *fiber.Ctx) error
}

type PasskeyController struct {
	service services.IPasskeyService
	jwt     services.IJWTService
}

func NewPasskeyController(service services.IPasskeyService, jwt services.IJWTService) IPasskeyController {
	return &PasskeyController{service: service, jwt: jwt}
}

func (pc *PasskeyController) RegisterBegin(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid principal"})
	}

	var req request.RegisterBeginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	ceremony, err := pc.service.RegisterBegin(c.Context(), userID, c.Protocol(), string(c.Request().Host()), req.KeyName)
	if err != nil {
		return ceremonyError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ceremony)
}

func (pc *PasskeyController) RegisterComplete(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid principal"})
	}

	token := c.Get(CeremonyTokenHeader)
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing ceremony token"})
	}

	// go-webauthn parses the attestation from a net/http request.
	req := new(http.Request)
	if err := fasthttpadaptor.ConvertRequest(c.Context(), req, true); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to convert request"})
	}

	key, err := pc.service.RegisterComplete(c.Context(), userID, token, c.Protocol(), string(c.Request().Host()), req)
	if err != nil {
		return ceremonyError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok", "key": key})
}

func (pc *PasskeyController) AuthenticateBegin(c *fiber.Ctx) error {
	var req request.AuthenticateBeginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ceremony, err := pc.service.AuthenticateBegin(c.Context(), req.Username, c.Protocol(), string(c.Request().Host()))
	if err != nil {
		return ceremonyError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ceremony)
}

func (pc *PasskeyController) AuthenticateComplete(c *fiber.Ctx) error {
	token := c.Get(CeremonyTokenHeader)
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing ceremony token"})
	}

	req := new(http.Request)
	if err := fasthttpadaptor.ConvertRequest(c.Context(), req, true); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to convert request"})
	}

	user, credential, err := pc.service.AuthenticateComplete(c.Context(), token, c.Protocol(), string(c.Request().Host()), req)
	if err != nil {
		return ceremonyError(c, err)
	}

	// Ceremony confirmed the identity; session issuance happens here, at
	// the application boundary.
	tokens, err := pc.jwt.GenerateTokens(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue tokens"})
	}

	return c.Status(fiber.StatusOK).JSON(response.AuthenticatedUser{
		Username:    user.Username,
		Role:        string(user.Role),
		KeyID:       credential.ID,
		KeyName:     credential.DisplayName,
		RedirectURL: redirectForRole(user.Role),
		Tokens:      *tokens,
	})
}

func (pc *PasskeyController) ListKeys(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid principal"})
	}

	keys, err := pc.service.ListKeys(c.Context(), userID)
	if err != nil {
		return ceremonyError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"keys": keys})
}

func (pc *PasskeyController) DeleteKey(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid principal"})
	}

	keyID, err := strconv.Atoi(c.Params("keyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid key id"})
	}

	if err := pc.service.DeleteKey(c.Context(), userID, uint(keyID)); err != nil {
		return ceremonyError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

func (pc *PasskeyController) UsersWithKeys(c *fiber.Ctx) error {
	if domain.ParseRole(principalRole(c)) != domain.RoleAdmin {
		return ceremonyError(c, services.ErrForbidden)
	}

	users, err := pc.service.UsersWithKeys(c.Context())
	if err != nil {
		return ceremonyError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"users": users})
}

func redirectForRole(role domain.Role) string {
	switch role {
	case domain.RoleTeacher:
		return "/teacher/"
	case domain.RoleAdmin:
		return "/admin/"
	default:
		return "/student/"
	}
}
