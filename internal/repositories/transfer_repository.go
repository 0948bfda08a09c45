package repositories

import (
	"context"
	"errors"
	"time"

	"kolo/internal/models"
)

var (
	ErrTransferNotFound      = errors.New("transfer not found")
	ErrInvalidTransferState  = errors.New("transfer not in expected state")
	ErrPendingNotFound       = errors.New("pending transfer not found")
	ErrDuplicateClaimToken   = errors.New("claim token already exists")
	ErrPendingAlreadySettled = errors.New("pending transfer already claimed or expired")
)

// TransferRepository defines database operations for settled transfers.
type TransferRepository interface {
	Create(ctx context.Context, transfer *models.Transfer) error
	GetByID(ctx context.Context, id string) (*models.Transfer, error)

	// MarkCompleted transitions PROCESSING -> COMPLETED and records
	// the ledger reference. Fails if the transfer is not PROCESSING.
	MarkCompleted(ctx context.Context, id, ledgerTxRef string, at time.Time) error

	// MarkFailed transitions PROCESSING -> FAILED with a reason.
	// Fails if the transfer is not PROCESSING.
	MarkFailed(ctx context.Context, id, reason string, at time.Time) error

	ListBySender(ctx context.Context, senderID uint, limit, offset int) ([]models.Transfer, error)
}

// PendingTransferRepository defines database operations for escrowed transfers.
type PendingTransferRepository interface {
	Create(ctx context.Context, pending *models.PendingTransfer) error
	GetByID(ctx context.Context, id string) (*models.PendingTransfer, error)
	GetByClaimToken(ctx context.Context, token string) (*models.PendingTransfer, error)

	// Claim transitions PENDING_CLAIM -> CLAIMED exactly once. A
	// concurrent or repeated claim finds zero rows affected and gets
	// ErrPendingAlreadySettled.
	Claim(ctx context.Context, id string, claimantID uint, ledgerTxRef string, at time.Time) error

	// Reopen reverts an unsettled CLAIMED row to PENDING_CLAIM after
	// a clean settlement failure. Rows that already carry a ledger
	// reference are never reopened.
	Reopen(ctx context.Context, id string) error

	// SetLedgerTxRef records the settlement reference on a claimed row.
	SetLedgerTxRef(ctx context.Context, id, ledgerTxRef string) error

	// ExpireDue transitions PENDING_CLAIM rows past their deadline to
	// EXPIRED and returns only the rows this call transitioned, so a
	// concurrent sweeper that loses the race notifies nobody.
	ExpireDue(ctx context.Context, now time.Time) ([]models.PendingTransfer, error)

	ListBySender(ctx context.Context, senderID uint, limit, offset int) ([]models.PendingTransfer, error)
}

// ReceiptRepository is the append-only audit sink. It has no update
// or delete operations.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	ListForTransfer(ctx context.Context, transferID string) ([]models.Receipt, error)
}

// NotificationRepository is the append-only notification sink.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error)
}

// ReconciliationRepository stores unresolved-state records for
// operator intervention.
type ReconciliationRepository interface {
	Create(ctx context.Context, c *models.ReconciliationCase) error
	GetByID(ctx context.Context, id uint) (*models.ReconciliationCase, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.ReconciliationCase, int64, error)
	Resolve(ctx context.Context, id uint, resolution string, at time.Time) error
}
