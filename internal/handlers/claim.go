package handlers

import (
	"errors"
	"log"

	"kolo/internal/services/escrow"
	"kolo/internal/services/user"
	"kolo/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// ClaimHandler settles escrowed transfers to the member presenting a
// valid claim token.
type ClaimHandler struct {
	escrow escrow.Service
	users  user.Service
}

func NewClaimHandler(escrowService escrow.Service, userService user.Service) *ClaimHandler {
	return &ClaimHandler{
		escrow: escrowService,
		users:  userService,
	}
}

// ClaimTransfer handles POST /api/claims/:token. The caller must be
// an authenticated member; the claim token alone carries no identity.
func (h *ClaimHandler) ClaimTransfer(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	token := c.Params("token")
	if token == "" {
		return utils.BadRequest(c, "Claim token is required")
	}

	claimant, err := h.users.GetByID(claims.UserID)
	if err != nil {
		return utils.Unauthorized(c, "Claimant account not found")
	}

	pending, err := h.escrow.Claim(c.Context(), token, claimant)
	if err != nil {
		switch {
		case errors.Is(err, escrow.ErrTokenNotFound):
			return utils.NotFound(c, "Claim token not recognized")
		case errors.Is(err, escrow.ErrAlreadyClaimed):
			return utils.Respond(c, fiber.StatusConflict, fiber.Map{"error": err.Error()})
		case errors.Is(err, escrow.ErrEscrowExpired):
			return utils.Respond(c, fiber.StatusGone, fiber.Map{"error": err.Error()})
		case errors.Is(err, escrow.ErrClaimantIsSender):
			return utils.Forbidden(c, err.Error())
		default:
			log.Printf("claim failed for member %d: %v", claims.UserID, err)
			return utils.Respond(c, fiber.StatusUnprocessableEntity, fiber.Map{"error": "claim could not be settled"})
		}
	}

	return utils.Success(c, fiber.Map{
		"message":  "transfer claimed",
		"transfer": pending,
	})
}
