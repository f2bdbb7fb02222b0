package handlers

import (
	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/shared"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authSvc  AuthServiceInterface
	clientIP func(*fiber.Ctx) string
}

func NewAuthHandler(authSvc AuthServiceInterface, clientIP func(*fiber.Ctx) string) *AuthHandler {
	return &AuthHandler{
		authSvc:  authSvc,
		clientIP: clientIP,
	}
}

// @Summary Register
// @Description Create a new creator account
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} shared.Response{data=dto.RegisterResponse}
// @Router /api/v1/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	resp, err := h.authSvc.Register(c.Context(), req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, resp)
}

// @Summary Login
// @Description Authenticate and receive a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login payload"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	resp, err := h.authSvc.Login(c.Context(), req, h.clientIP(c), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
