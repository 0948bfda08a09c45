// Package funding decides how a transfer is paid for: from existing
// ledger balance, or by first topping up the shortfall from a stored
// card. Failure here is always local and cheap; it is the last point
// a request can be rejected before any external money movement.
package funding

import (
	"context"
	"fmt"

	"kolo/internal/models"
	"kolo/internal/services/balance"
)

// Plan is the funding decision for one transfer.
type Plan struct {
	Source         string  // BALANCE or CARD
	Deficit        float64 // unit of account; zero for BALANCE
	RequiredLedger int64
	BalanceLedger  int64
	Card           *models.CreditCard // set when Source is CARD
}

// CardStore is the slice of the card repository the resolver needs.
type CardStore interface {
	GetActiveCards(userID uint) ([]*models.CreditCard, error)
}

// Service resolves funding plans.
type Service interface {
	Resolve(ctx context.Context, sender *models.User, amount float64) (*Plan, error)
}

type service struct {
	oracle balance.Service
	cards  CardStore
}

// NewService creates a new funding resolver.
func NewService(oracle balance.Service, cards CardStore) Service {
	if oracle == nil {
		panic("balance oracle is required")
	}
	if cards == nil {
		panic("card store is required")
	}
	return &service{oracle: oracle, cards: cards}
}

// Resolve fetches the sender's live balance and computes the plan.
// When balance falls short, only the deficit is planned for the card
// charge, never the full requested amount, so a partially short
// member is never over-minted.
func (s *service) Resolve(ctx context.Context, sender *models.User, amount float64) (*Plan, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	bal, err := s.oracle.GetBalance(ctx, sender.WalletAddress)
	if err != nil {
		return nil, err
	}

	required := models.ToLedgerUnits(amount)
	plan := &Plan{
		RequiredLedger: required,
		BalanceLedger:  bal.Raw,
	}

	if bal.Raw >= required {
		plan.Source = models.FundingSourceBalance
		return plan, nil
	}

	plan.Source = models.FundingSourceCard
	plan.Deficit = models.FromLedgerUnits(required - bal.Raw)

	card, err := s.defaultActiveCard(sender.ID)
	if err != nil {
		return nil, err
	}
	plan.Card = card
	return plan, nil
}

func (s *service) defaultActiveCard(userID uint) (*models.CreditCard, error) {
	cards, err := s.cards.GetActiveCards(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, ErrNoFundingMethod
	}
	for _, c := range cards {
		if c.IsDefault {
			return c, nil
		}
	}
	return cards[0], nil
}
