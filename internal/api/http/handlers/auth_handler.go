package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voting-identity/internal/api/dto"
	"github.com/spec-kit/voting-identity/internal/service"
)

// AuthHandler exposes sign-in, self-registration and the first-login
// password change.
type AuthHandler struct {
	auth     *service.AuthService
	identity *service.IdentityService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, identityService *service.IdentityService) *AuthHandler {
	return &AuthHandler{auth: authService, identity: identityService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.auth.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	if result.FirstLogin {
		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"first_login": true,
				"message":     result.Message,
			},
		})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"message": result.Message,
			"user":    result.User,
			"auth":    dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.identity.CreateUser(c.Context(), registerInput(req), req.ParentID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(creationResponse(result))
}

// FirstLoginPassword handles POST /auth/password/first-login.
func (h *AuthHandler) FirstLoginPassword(c *fiber.Ctx) error {
	var req dto.FirstLoginPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	message, err := h.auth.CompleteFirstLogin(c.Context(), req.DNI, req.Password, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"message": message},
	})
}

func registerInput(req dto.RegisterUserRequest) service.CreateUserInput {
	return service.CreateUserInput{
		Name:     req.Name,
		DNI:      req.DNI,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		City:     req.City,
		Country:  req.Country,
		CanVote:  req.CanVote,
		Roles:    req.Roles,
	}
}

func creationResponse(result *service.CreateUserResult) fiber.Map {
	data := fiber.Map{"user": result.User}
	if result.NotifyErr != nil {
		data["warning"] = "user created but notification failed: " + result.NotifyErr.Error()
	}
	return fiber.Map{"data": data}
}
