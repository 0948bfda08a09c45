package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kolo/internal/ledger"
	"kolo/internal/models"
)

// compensate unwinds a transfer whose settlement did not succeed. A
// clean rejection refunds the card charge, if any, exactly once. An
// ambiguous outcome refunds nothing: the units may already have moved,
// and an automatic refund would risk paying the member twice. Those go
// to a reconciliation case for an operator to settle by inspecting the
// ledger.
func (s *service) compensate(ctx context.Context, t *models.Transfer, chargedCents int64, settleErr error) error {
	reason := settleErr.Error()
	now := time.Now()
	if err := s.transfers.MarkFailed(ctx, t.ID, reason, now); err != nil {
		log.Printf("failed to mark transfer %s failed: %v", t.ID, err)
	}
	t.Status = models.TransferStatusFailed
	t.FailureReason = &reason
	t.FailedAt = &now

	if errors.Is(settleErr, ledger.ErrSettlementAmbiguous) {
		details := fmt.Sprintf("settlement outcome unknown: %v", settleErr)
		s.recon.OpenCase(ctx, t.ID, models.ReconciliationSettlementAmbiguous, details)
		if s.notifier != nil {
			s.notifier.TransferNeedsSupport(ctx, t)
		}
		return fmt.Errorf("%w: outcome pending review", ErrPaymentFailed)
	}

	if t.FundingSource == models.FundingSourceCard && t.ProcessorChargeRef != nil {
		refundRef, err := s.cards.Refund(ctx, *t.ProcessorChargeRef, chargedCents)
		if err != nil {
			details := fmt.Sprintf("refund of charge %s (%d cents) failed: %v", *t.ProcessorChargeRef, chargedCents, err)
			s.recon.OpenCase(ctx, t.ID, models.ReconciliationRefundFailed, details)
			if s.notifier != nil {
				s.notifier.TransferNeedsSupport(ctx, t)
			}
			return fmt.Errorf("%w: refund pending review", ErrPaymentFailed)
		}
		log.Printf("refunded charge %s for failed transfer %s: %s", *t.ProcessorChargeRef, t.ID, refundRef)
		if s.notifier != nil {
			s.notifier.TransferRefunded(ctx, t, float64(chargedCents)/100)
		}
	}

	return fmt.Errorf("%w: %v", ErrPaymentFailed, settleErr)
}

// unwindCharge reverses a card charge made for a transfer that never
// reached settlement. Used when funding itself fails partway; the
// failed charge still ends up in a reconciliation case if the refund
// cannot be made.
func (s *service) unwindCharge(ctx context.Context, transferID, chargeRef string, cents int64, why string) {
	refundRef, err := s.cards.Refund(ctx, chargeRef, cents)
	if err != nil {
		details := fmt.Sprintf("%s; refund of charge %s (%d cents) failed: %v", why, chargeRef, cents, err)
		s.recon.OpenCase(ctx, transferID, models.ReconciliationRefundFailed, details)
		return
	}
	log.Printf("unwound charge %s (%s): refund %s", chargeRef, why, refundRef)
}
