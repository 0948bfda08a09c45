package models

import "time"

// Receipt is the append-only audit record for a transfer. It ties a
// Transfer or PendingTransfer to its semantic kind and metadata and is
// never mutated after creation, independent of what later happens on
// the ledger or at the card processor.
type Receipt struct {
	ID                string `gorm:"primarykey"`
	TransferID        *string
	PendingTransferID *string
	Kind              string `gorm:"not null;default:'personal'"`
	Metadata          JSON   `gorm:"type:jsonb"`
	CreatedAt         time.Time
}

// Notification is an append-only user-facing record derived from
// persisted transfer status, never the other way around.
type Notification struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index"`
	Kind      string `gorm:"not null"`
	Message   string `gorm:"not null"`
	Metadata  JSON   `gorm:"type:jsonb"`
	CreatedAt time.Time
}

// Notification kinds
const (
	NotificationTransferSent     = "transfer_sent"
	NotificationTransferReceived = "transfer_received"
	NotificationRefundIssued     = "refund_issued"
	NotificationContactSupport   = "contact_support"
	NotificationEscrowCreated    = "escrow_created"
	NotificationEscrowClaimed    = "escrow_claimed"
	NotificationEscrowExpired    = "escrow_expired"
)
