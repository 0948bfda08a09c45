package handlers

import (
	"log"

	"kolo/internal/models"
	"kolo/internal/services/card"
	"kolo/internal/utils"
	"kolo/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreditCardHandler struct {
	cards card.Service
}

func NewCreditCardHandler(cardService card.Service) *CreditCardHandler {
	return &CreditCardHandler{cards: cardService}
}

// LinkCard handles POST /api/cards. The card number is tokenized and
// discarded; only the token and last four digits are stored.
func (h *CreditCardHandler) LinkCard(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input models.CreateCardInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.CardInput(&input)
	if !v.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": v.Errors})
	}

	linked, err := h.cards.LinkCard(claims.UserID, input)
	if err != nil {
		log.Printf("card link failed for member %d: %v", claims.UserID, err)
		return utils.BadRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"card": cardView(linked),
	})
}

// GetCards handles GET /api/cards.
func (h *CreditCardHandler) GetCards(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "Invalid claims")
	}

	cards, err := h.cards.GetCards(claims.UserID)
	if err != nil {
		return utils.InternalError(c, "Failed to load cards")
	}

	views := make([]fiber.Map, 0, len(cards))
	for _, cc := range cards {
		views = append(views, cardView(cc))
	}

	return utils.Success(c, fiber.Map{"cards": views})
}

// cardView strips the processor token from API responses.
func cardView(cc *models.CreditCard) fiber.Map {
	return fiber.Map{
		"id":           cc.ID,
		"card_type":    cc.CardType,
		"last_four":    cc.LastFour,
		"expiry_month": cc.ExpiryMonth,
		"expiry_year":  cc.ExpiryYear,
		"is_default":   cc.IsDefault,
		"status":       cc.Status,
	}
}
