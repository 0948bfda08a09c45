package handlers

import (
	"errors"
	"log"

	"kolo/internal/models"
	"kolo/internal/services/history"
	"kolo/internal/services/orchestrator"
	"kolo/internal/services/user"
	"kolo/internal/utils"
	"kolo/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler fronts the orchestration core and the history view.
type PaymentHandler struct {
	orchestrator orchestrator.Service
	users        user.Service
	history      history.Service
}

func NewPaymentHandler(orchestratorService orchestrator.Service, userService user.Service, historyService history.Service) *PaymentHandler {
	return &PaymentHandler{
		orchestrator: orchestratorService,
		users:        userService,
		history:      historyService,
	}
}

// SendPayment handles POST /api/payments/send. The recipient field
// resolves to a member; the contact field routes to escrow for
// someone not on the network yet.
func (h *PaymentHandler) SendPayment(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var req models.SendPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.SendPayment(&req)
	if !v.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": v.Errors})
	}

	sender, err := h.users.GetByID(claims.UserID)
	if err != nil {
		return utils.Unauthorized(c, "Sender account not found")
	}

	orcReq := orchestrator.Request{
		Sender: sender,
		Amount: req.Amount,
		Note:   req.Note,
		Kind:   req.Kind,
	}
	if req.Recipient != "" {
		recipient, err := h.users.ResolveRecipient(req.Recipient)
		if err != nil {
			if errors.Is(err, user.ErrRecipientUnknown) {
				return utils.NotFound(c, "Recipient not found")
			}
			return utils.InternalError(c, "Failed to resolve recipient")
		}
		orcReq.Recipient = recipient
	} else {
		orcReq.RecipientContact = req.Contact
	}

	result, err := h.orchestrator.SendPayment(c.Context(), orcReq)
	if err != nil {
		return h.paymentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetHistory handles GET /api/payments/history: one merged,
// chronological view over settled, received, and pending transfers.
func (h *PaymentHandler) GetHistory(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	pagination := utils.GetPagination(c, 1, history.DefaultLimit)

	entries, total, err := h.history.GetHistory(c.Context(), claims.UserID, pagination.Limit, pagination.Offset)
	if err != nil {
		log.Printf("history query failed for member %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to load history")
	}
	pagination.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(entries, pagination))
}

func (h *PaymentHandler) paymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, orchestrator.ErrInvalidAmount),
		errors.Is(err, orchestrator.ErrNoRecipient),
		errors.Is(err, orchestrator.ErrSelfTransfer),
		errors.Is(err, orchestrator.ErrNoteTooLong):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, orchestrator.ErrSenderInactive),
		errors.Is(err, orchestrator.ErrRecipientInactive):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, orchestrator.ErrFundingBusy):
		return utils.Respond(c, fiber.StatusConflict, fiber.Map{"error": err.Error()})
	default:
		log.Printf("payment failed: %v", err)
		return utils.Respond(c, fiber.StatusUnprocessableEntity, fiber.Map{"error": err.Error()})
	}
}
