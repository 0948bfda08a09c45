package handlers

import (
	"errors"
	"log"

	"kolo/internal/ledger"
	"kolo/internal/services/balance"
	"kolo/internal/services/user"
	"kolo/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type BalanceHandler struct {
	balances balance.Service
	users    user.Service
}

func NewBalanceHandler(balanceService balance.Service, userService user.Service) *BalanceHandler {
	return &BalanceHandler{
		balances: balanceService,
		users:    userService,
	}
}

// GetBalance handles GET /api/balance. An unreachable ledger is a
// 503, never a zero balance.
func (h *BalanceHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	member, err := h.users.GetByID(claims.UserID)
	if err != nil {
		return utils.Unauthorized(c, "Account not found")
	}

	bal, err := h.balances.GetBalance(c.Context(), member.WalletAddress)
	if err != nil {
		if errors.Is(err, ledger.ErrLedgerUnavailable) {
			return utils.Respond(c, fiber.StatusServiceUnavailable, fiber.Map{"error": "ledger is unavailable"})
		}
		log.Printf("balance read failed for member %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to read balance")
	}

	return utils.Success(c, fiber.Map{"balance": bal})
}
