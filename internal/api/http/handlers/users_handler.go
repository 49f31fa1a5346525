package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voting-identity/internal/api/dto"
	"github.com/spec-kit/voting-identity/internal/service"
)

// UsersHandler exposes admin-scoped user management.
type UsersHandler struct {
	identity *service.IdentityService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(identityService *service.IdentityService) *UsersHandler {
	return &UsersHandler{identity: identityService}
}

// List handles GET /users. An optional parent_id query narrows the result
// to that admin's direct children.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.identity.ListUsers(c.Context(), c.Query("parent_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"users": users}})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.identity.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": user}})
}

// Create handles POST /users: admin-provisioned account creation. A parent
// is expected by this path's calling convention.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.identity.CreateUserByAdmin(c.Context(), registerInput(req), req.ParentID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(creationResponse(result))
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.identity.UpdateUser(c.Context(), c.Params("id"), service.CreateUserInput{
		Name:     req.Name,
		DNI:      req.DNI,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		City:     req.City,
		Country:  req.Country,
		CanVote:  req.CanVote,
		Roles:    req.Roles,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"user": user}})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	message, err := h.identity.DeleteUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": message}})
}
