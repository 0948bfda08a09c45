// Package card is the boundary adapter to the external card
// processor. Charges made here are not cancellable, only compensable:
// every charge must end up paired in the audit trail with either a
// settlement success or an explicit refund attempt.
package card

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"kolo/internal/config"
	"kolo/internal/models"
	"kolo/internal/repositories"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
	"github.com/stripe/stripe-go/v72/refund"
)

// Gateway is the charge/refund contract the orchestration core
// consumes. Tests substitute a fake.
type Gateway interface {
	Charge(ctx context.Context, card *models.CreditCard, amountCents int64, memo string) (string, error)
	Refund(ctx context.Context, chargeRef string, amountCents int64) (string, error)
}

// Service manages stored cards and fronts the processor.
type Service interface {
	Gateway
	LinkCard(userID uint, input models.CreateCardInput) (*models.CreditCard, error)
	GetCards(userID uint) ([]*models.CreditCard, error)
}

type service struct {
	repo repositories.CreditCardRepository
}

// NewService creates a new card service backed by Stripe.
func NewService(repo repositories.CreditCardRepository) Service {
	if repo == nil {
		panic("card repository is required")
	}
	stripe.Key = config.GetEnv("STRIPE_SECRET_KEY", "")
	return &service{repo: repo}
}

// Charge charges the stored card for exactly amountCents. The memo
// carries the transfer id so processor records tie back to the audit
// trail.
func (s *service) Charge(ctx context.Context, c *models.CreditCard, amountCents int64, memo string) (string, error) {
	if c == nil || c.Status != "active" {
		return "", ErrCardNotActive
	}

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(memo),
	}
	params.Context = ctx
	if err := params.SetSource(c.Token); err != nil {
		return "", fmt.Errorf("invalid card token: %w", err)
	}

	ch, err := charge.New(params)
	if err != nil {
		log.Printf("card charge denied for card %d: %v", c.ID, err)
		return "", fmt.Errorf("%w: %v", ErrChargeDenied, err)
	}
	return ch.ID, nil
}

// Refund reverses a prior charge for exactly amountCents. A failure
// here must never be swallowed by callers; money has left the member
// without value received.
func (s *service) Refund(ctx context.Context, chargeRef string, amountCents int64) (string, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(chargeRef),
		Amount: stripe.Int64(amountCents),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		log.Printf("card refund failed for charge %s: %v", chargeRef, err)
		return "", fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}
	return r.ID, nil
}

// LinkCard tokenizes and stores a new funding card. Only the token
// and the last four digits are kept.
func (s *service) LinkCard(userID uint, input models.CreateCardInput) (*models.CreditCard, error) {
	token, err := s.tokenize(input)
	if err != nil {
		return nil, err
	}

	lastFour := input.CardNumber
	if len(lastFour) > 4 {
		lastFour = lastFour[len(lastFour)-4:]
	}

	existing, err := s.repo.GetActiveCards(userID)
	if err != nil {
		return nil, err
	}

	card := &models.CreditCard{
		UserID:      userID,
		Token:       token.Token,
		CardType:    token.CardType,
		ExpiryMonth: input.ExpiryMonth,
		ExpiryYear:  input.ExpiryYear,
		LastFour:    lastFour,
		IsDefault:   len(existing) == 0,
		Status:      "active",
	}

	if err := s.repo.Create(card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *service) GetCards(userID uint) ([]*models.CreditCard, error) {
	return s.repo.GetByUserID(userID)
}

// tokenize exchanges card details for a processor token. Stripe test
// tokens pass straight through; raw PANs are validated but direct
// tokenization stays unsupported outside the processor's own SDKs.
func (s *service) tokenize(input models.CreateCardInput) (*models.CardToken, error) {
	testCards := map[string]struct {
		token    string
		cardType string
	}{
		"4242424242424242": {"tok_visa", "Visa"},
		"4000056655665556": {"tok_visa_debit", "Visa Debit"},
		"5555555555554444": {"tok_mastercard", "Mastercard"},
	}

	if strings.HasPrefix(input.CardNumber, "tok_") {
		cardType := "Unknown"
		switch input.CardNumber {
		case "tok_visa", "tok_visa_debit":
			cardType = "Visa"
		case "tok_mastercard":
			cardType = "Mastercard"
		}
		return &models.CardToken{
			Token:    input.CardNumber,
			CardType: cardType,
			Expiry:   fmt.Sprintf("%s/%s", input.ExpiryMonth, input.ExpiryYear),
		}, nil
	}

	if tc, ok := testCards[input.CardNumber]; ok {
		return &models.CardToken{
			Token:    tc.token,
			CardType: tc.cardType,
			Expiry:   fmt.Sprintf("%s/%s", input.ExpiryMonth, input.ExpiryYear),
		}, nil
	}

	if !validCardNumber(input.CardNumber) {
		return nil, errors.New("invalid card number: failed Luhn check")
	}

	month, err := strconv.Atoi(input.ExpiryMonth)
	if err != nil {
		return nil, errors.New("invalid expiry month format")
	}
	year, err := strconv.Atoi(input.ExpiryYear)
	if err != nil {
		return nil, errors.New("invalid expiry year format")
	}
	if !validExpiryDate(month, year) {
		return nil, errors.New("card is expired or has invalid expiry date")
	}

	return nil, errors.New("direct card tokenization is not supported - use the processor's client SDK")
}

func validCardNumber(cardNumber string) bool {
	var sum int
	shouldDouble := false

	for i := len(cardNumber) - 1; i >= 0; i-- {
		if cardNumber[i] < '0' || cardNumber[i] > '9' {
			return false
		}
		digit := int(cardNumber[i] - '0')
		if shouldDouble {
			digit = digit * 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		shouldDouble = !shouldDouble
	}

	return sum%10 == 0
}

func validExpiryDate(month, year int) bool {
	if month < 1 || month > 12 {
		return false
	}

	currentYear, currentMonth, _ := time.Now().Date()
	if year < currentYear || (year == currentYear && month < int(currentMonth)) {
		return false
	}

	return true
}
