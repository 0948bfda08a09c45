package handlers

import (
	"log"
	"strconv"

	"kolo/internal/services/escrow"
	"kolo/internal/services/reconciliation"
	"kolo/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the operator surface: reconciliation cases and
// a manual escrow sweep trigger.
type AdminHandler struct {
	recon  reconciliation.Service
	escrow escrow.Service
}

func NewAdminHandler(reconService reconciliation.Service, escrowService escrow.Service) *AdminHandler {
	return &AdminHandler{
		recon:  reconService,
		escrow: escrowService,
	}
}

// ListReconciliationCases handles GET /api/admin/reconciliation.
func (h *AdminHandler) ListReconciliationCases(c *fiber.Ctx) error {
	pagination := utils.GetPagination(c, 1, 20)

	cases, total, err := h.recon.ListOpen(c.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		return utils.InternalError(c, "Failed to load reconciliation cases")
	}
	pagination.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(cases, pagination))
}

// ResolveReconciliationCase handles POST /api/admin/reconciliation/:id/resolve.
func (h *AdminHandler) ResolveReconciliationCase(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "Invalid case ID")
	}

	var input struct {
		Resolution string `json:"resolution"`
	}
	if err := c.BodyParser(&input); err != nil || input.Resolution == "" {
		return utils.BadRequest(c, "Resolution is required")
	}

	if err := h.recon.Resolve(c.Context(), uint(id), input.Resolution); err != nil {
		log.Printf("failed to resolve reconciliation case %d: %v", id, err)
		return utils.InternalError(c, "Failed to resolve case")
	}

	return utils.Success(c, fiber.Map{"message": "case resolved"})
}

// TriggerSweep handles POST /api/admin/escrow/sweep. The scheduled
// sweeper runs this on an interval; the endpoint exists for operators
// who cannot wait for the next tick.
func (h *AdminHandler) TriggerSweep(c *fiber.Ctx) error {
	expired, err := h.escrow.Sweep(c.Context())
	if err != nil {
		log.Printf("manual escrow sweep failed: %v", err)
		return utils.InternalError(c, "Sweep failed")
	}

	return utils.Success(c, fiber.Map{"expired": expired})
}
