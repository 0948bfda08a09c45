// Package balance reads member balances from the ledger service.
// It is read-only and side-effect free; a balance is never cached
// across orchestration steps because correctness depends on
// freshness.
package balance

import (
	"context"
	"fmt"

	"kolo/internal/ledger"
	"kolo/internal/models"
)

// Balance is a ledger balance in both representations.
type Balance struct {
	Raw     int64   `json:"raw"`
	Display float64 `json:"display"`
}

// Service is the balance oracle.
type Service interface {
	GetBalance(ctx context.Context, walletAddress string) (Balance, error)
}

type service struct {
	ledger ledger.Client
}

// NewService creates a new balance oracle.
func NewService(ledgerClient ledger.Client) Service {
	if ledgerClient == nil {
		panic("ledger client is required")
	}
	return &service{ledger: ledgerClient}
}

// GetBalance reads the wallet's current raw balance and its display
// amount. An unreachable ledger surfaces ledger.ErrLedgerUnavailable;
// it is never collapsed into a zero balance.
func (s *service) GetBalance(ctx context.Context, walletAddress string) (Balance, error) {
	raw, err := s.ledger.GetBalance(ctx, walletAddress)
	if err != nil {
		return Balance{}, fmt.Errorf("balance read failed: %w", err)
	}
	return Balance{
		Raw:     raw,
		Display: models.FromLedgerUnits(raw),
	}, nil
}
