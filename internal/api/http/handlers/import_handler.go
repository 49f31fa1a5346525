package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voting-identity/internal/api/dto"
	"github.com/spec-kit/voting-identity/internal/service"
)

// ImportHandler exposes the bulk reconciliation endpoint.
type ImportHandler struct {
	importer *service.ImportService
}

// NewImportHandler constructs handler.
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{importer: importService}
}

// Import handles POST /users/import. Per-row failures never fail the
// request; callers inspect the report's errors list.
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	var req dto.ImportUsersRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	rows := make([]service.ImportRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, service.ImportRow{
			Name:    row.Name,
			DNI:     row.DNI,
			Email:   row.Email,
			Address: row.Address,
			City:    row.City,
			Country: row.Country,
			CanVote: row.CanVote,
		})
	}

	report, err := h.importer.ImportUsers(c.Context(), rows, req.ParentID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": report})
}
