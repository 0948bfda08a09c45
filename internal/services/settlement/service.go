// Package settlement performs the actual value movement on the
// ledger. A settlement is submitted at most once per transfer: an
// ambiguous outcome is surfaced to the compensation path, never
// retried here, because a retry after an unknown result risks paying
// twice.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kolo/internal/ledger"
)

// Executor settles ledger transfers.
type Executor interface {
	Settle(ctx context.Context, senderWallet, recipientWallet string, ledgerAmount int64) (string, error)
}

// Service errors
var (
	ErrSenderInactive    = errors.New("sender is not an active member")
	ErrRecipientInactive = errors.New("recipient is not an active member")
)

type executor struct {
	ledger  ledger.Client
	timeout time.Duration
}

// NewExecutor creates a settlement executor with a bounded
// per-settlement wait.
func NewExecutor(ledgerClient ledger.Client, timeout time.Duration) Executor {
	if ledgerClient == nil {
		panic("ledger client is required")
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &executor{ledger: ledgerClient, timeout: timeout}
}

// Settle re-verifies both memberships immediately before submitting,
// since membership can change between request time and now, then
// provisions gas and submits the transfer, blocking until the ledger
// confirms it.
func (e *executor) Settle(ctx context.Context, senderWallet, recipientWallet string, ledgerAmount int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	senderActive, err := e.ledger.IsActiveMember(ctx, senderWallet)
	if err != nil {
		return "", fmt.Errorf("sender membership check failed: %w", err)
	}
	if !senderActive {
		return "", ErrSenderInactive
	}

	recipientActive, err := e.ledger.IsActiveMember(ctx, recipientWallet)
	if err != nil {
		return "", fmt.Errorf("recipient membership check failed: %w", err)
	}
	if !recipientActive {
		return "", ErrRecipientInactive
	}

	// The sender may not hold enough native tokens to pay ledger
	// transaction costs; the ledger service provisions them.
	if err := e.ledger.EnsureGas(ctx, senderWallet); err != nil {
		return "", fmt.Errorf("gas provisioning failed: %w", err)
	}

	txRef, err := e.ledger.Transfer(ctx, senderWallet, recipientWallet, ledgerAmount)
	if err != nil {
		return "", err
	}
	return txRef, nil
}
