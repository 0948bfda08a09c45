package models

import "time"

// Reconciliation case kinds
const (
	ReconciliationRefundFailed        = "REFUND_FAILED"
	ReconciliationSettlementAmbiguous = "SETTLEMENT_AMBIGUOUS"
)

// Reconciliation case statuses
const (
	ReconciliationOpen     = "open"
	ReconciliationResolved = "resolved"
)

// ReconciliationCase is an unresolved-state record requiring operator
// intervention: a failed refund (money left the member without value
// received) or a settlement whose on-chain outcome is unknown. The
// system cannot self-heal past either, so they are escalated instead
// of retried.
type ReconciliationCase struct {
	ID         uint   `gorm:"primarykey"`
	TransferID string `gorm:"not null;index"`
	Kind       string `gorm:"not null"`
	Status     string `gorm:"not null;default:'open'"`
	Details    string
	Resolution string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}
