package models

import (
	"time"
)

// Funding sources
const (
	FundingSourceBalance = "BALANCE"
	FundingSourceCard    = "CARD"
)

// Transfer statuses
const (
	TransferStatusProcessing = "PROCESSING"
	TransferStatusCompleted  = "COMPLETED"
	TransferStatusFailed     = "FAILED"
)

// Semantic transfer kinds recorded on receipts
const (
	TransferKindPersonal   = "personal"
	TransferKindRent       = "rent"
	TransferKindService    = "service"
	TransferKindStorefront = "storefront"
)

// ValidTransferKind reports whether kind is one of the semantic
// transfer kinds.
func ValidTransferKind(kind string) bool {
	switch kind {
	case TransferKindPersonal, TransferKindRent, TransferKindService, TransferKindStorefront:
		return true
	}
	return false
}

// Transfer is a settled value movement between two members.
// Status moves PROCESSING -> COMPLETED or FAILED exactly once;
// LedgerTxRef is set only on COMPLETED, ProcessorChargeRef only
// when the transfer was CARD funded.
type Transfer struct {
	ID                 string  `gorm:"primarykey"`
	SenderID           uint    `gorm:"not null;index"`
	RecipientID        uint    `gorm:"not null;index"`
	AmountRequested    float64 `gorm:"not null"`
	AmountLedger       int64   `gorm:"not null"`
	FundingSource      string  `gorm:"not null"`
	ProcessorChargeRef *string
	LedgerTxRef        *string
	Status             string `gorm:"not null;default:'PROCESSING'"`
	Note               string `gorm:"size:256"`
	FailureReason      *string
	CreatedAt          time.Time
	CompletedAt        *time.Time
	FailedAt           *time.Time
}

// PendingTransfer statuses
const (
	PendingStatusClaimable = "PENDING_CLAIM"
	PendingStatusClaimed   = "CLAIMED"
	PendingStatusExpired   = "EXPIRED"
)

// PendingTransfer is an escrowed transfer addressed to a contact
// that does not map to a member yet. No ledger value moves at
// creation; settlement happens on claim. Once CLAIMED or EXPIRED
// the record is immutable.
type PendingTransfer struct {
	ID                 string  `gorm:"primarykey"`
	SenderID           uint    `gorm:"not null;index"`
	RecipientContact   string  `gorm:"not null"`
	AmountRequested    float64 `gorm:"not null"`
	FundingSource      string  `gorm:"not null"`
	ProcessorChargeRef *string
	ClaimToken         string `gorm:"uniqueIndex;not null"`
	Status             string `gorm:"not null;default:'PENDING_CLAIM'"`
	ExpiresAt          time.Time
	ClaimedByID        *uint
	ClaimedAt          *time.Time
	LedgerTxRef        *string
	Note               string `gorm:"size:256"`
	CreatedAt          time.Time
}

// Expired reports whether the claim window has passed.
func (p *PendingTransfer) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
