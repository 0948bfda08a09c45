package orchestrator

import (
	"context"
	"time"

	"kolo/internal/models"
	"kolo/internal/services/balance"
	"kolo/internal/services/funding"
)

// Request is one payment to orchestrate. Exactly one of Recipient and
// RecipientContact is set; recipient resolution happened before this
// core was entered.
type Request struct {
	Sender           *models.User
	Recipient        *models.User
	RecipientContact string
	Amount           float64
	Note             string
	Kind             string // receipt kind; defaults to personal
}

// Result is what the caller gets back.
type Result struct {
	Transfer   *models.Transfer        `json:"transfer,omitempty"`
	Pending    *models.PendingTransfer `json:"pending_transfer,omitempty"`
	ClaimToken string                  `json:"claim_token,omitempty"`
	Message    string                  `json:"message"`
}

// Minter tops up a wallet with freshly minted ledger units.
type Minter interface {
	Mint(ctx context.Context, to string, amount int64) (string, error)
}

// EscrowCreator is the slice of the escrow manager this package uses.
type EscrowCreator interface {
	Create(ctx context.Context, sender *models.User, contact string, amount float64, fundingSource string, chargeRef *string, note string) (*models.PendingTransfer, error)
}

// Locker serializes funding resolution per sender.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) error
	ReleaseLock(ctx context.Context, key string) error
}

// Notifier is the slice of the notification service this package uses.
type Notifier interface {
	TransferCompleted(ctx context.Context, t *models.Transfer)
	TransferRefunded(ctx context.Context, t *models.Transfer, refundedAmount float64)
	TransferNeedsSupport(ctx context.Context, t *models.Transfer)
}

// FundingResolver decides how a transfer is paid for.
type FundingResolver interface {
	Resolve(ctx context.Context, sender *models.User, amount float64) (*funding.Plan, error)
}

// BalanceOracle re-reads live balances where correctness depends on
// freshness.
type BalanceOracle interface {
	GetBalance(ctx context.Context, walletAddress string) (balance.Balance, error)
}
