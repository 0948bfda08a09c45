// Package orchestrator drives a payment from funding decision to
// settlement or escrow, and compensates when a step fails partway.
// Member and non-member payments share one routine distinguished only
// by whether the recipient resolved to a member or stayed a bare
// contact. This package owns every Transfer status transition; no
// other component mutates status.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kolo/internal/models"
	"kolo/internal/repositories"
	"kolo/internal/repositories/cache"
	"kolo/internal/services/card"
	"kolo/internal/services/funding"
	"kolo/internal/services/reconciliation"
	"kolo/internal/services/settlement"
	"kolo/internal/validation"

	"github.com/google/uuid"
)

const fundingLockTTL = 30 * time.Second

// Service is the payment transfer orchestration core.
type Service interface {
	SendPayment(ctx context.Context, req Request) (*Result, error)
}

type service struct {
	funding   FundingResolver
	oracle    BalanceOracle
	cards     card.Gateway
	minter    Minter
	settler   settlement.Executor
	escrow    EscrowCreator
	transfers repositories.TransferRepository
	receipts  repositories.ReceiptRepository
	recon     reconciliation.Service
	notifier  Notifier
	locker    Locker
}

// NewService creates the orchestration core with all collaborators
// injected explicitly, so tests can run it against fakes.
func NewService(
	fundingResolver FundingResolver,
	oracle BalanceOracle,
	cardGateway card.Gateway,
	minter Minter,
	settler settlement.Executor,
	escrowCreator EscrowCreator,
	transfers repositories.TransferRepository,
	receipts repositories.ReceiptRepository,
	recon reconciliation.Service,
	notifier Notifier,
	locker Locker,
) Service {
	if fundingResolver == nil {
		panic("funding resolver is required")
	}
	if oracle == nil {
		panic("balance oracle is required")
	}
	if cardGateway == nil {
		panic("card gateway is required")
	}
	if minter == nil {
		panic("minter is required")
	}
	if settler == nil {
		panic("settlement executor is required")
	}
	if escrowCreator == nil {
		panic("escrow creator is required")
	}
	if transfers == nil {
		panic("transfer repository is required")
	}
	if receipts == nil {
		panic("receipt repository is required")
	}
	if recon == nil {
		panic("reconciliation service is required")
	}

	return &service{
		funding:   fundingResolver,
		oracle:    oracle,
		cards:     cardGateway,
		minter:    minter,
		settler:   settler,
		escrow:    escrowCreator,
		transfers: transfers,
		receipts:  receipts,
		recon:     recon,
		notifier:  notifier,
		locker:    locker,
	}
}

// SendPayment funds and executes one transfer. Steps are strictly
// sequential; the only suspension points are the external calls.
// Before the card charge the request can still be rejected outright;
// after it, failure is compensable only.
func (s *service) SendPayment(ctx context.Context, req Request) (*Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	// Serialize funding per sender so two concurrent payments cannot
	// both observe a stale balance and both top up via card.
	if s.locker != nil {
		lockKey := fmt.Sprintf("funding:lock:%d", req.Sender.ID)
		if err := s.locker.AcquireLock(ctx, lockKey, fundingLockTTL); err != nil {
			if errors.Is(err, cache.ErrLockHeld) {
				return nil, ErrFundingBusy
			}
			return nil, fmt.Errorf("funding lock failed: %w", err)
		}
		defer func() {
			if err := s.locker.ReleaseLock(context.Background(), lockKey); err != nil {
				log.Printf("failed to release funding lock for sender %d: %v", req.Sender.ID, err)
			}
		}()
	}

	plan, err := s.funding.Resolve(ctx, req.Sender, req.Amount)
	if err != nil {
		return nil, err
	}

	transferID := uuid.NewString()

	var chargeRef *string
	var chargedCents int64
	if plan.Source == models.FundingSourceCard {
		chargedCents = models.AmountToCents(plan.Deficit)
		ref, err := s.topUp(ctx, transferID, req.Sender, plan, chargedCents)
		if err != nil {
			return nil, err
		}
		chargeRef = &ref
	}

	if req.Recipient != nil {
		return s.settleMember(ctx, transferID, req, plan, chargeRef, chargedCents)
	}
	return s.createEscrow(ctx, transferID, req, plan, chargeRef, chargedCents)
}

func (s *service) validate(req Request) error {
	if req.Sender == nil || !req.Sender.Active() {
		return ErrSenderInactive
	}
	if req.Recipient == nil && req.RecipientContact == "" {
		return ErrNoRecipient
	}
	if req.Recipient != nil {
		if req.Recipient.ID == req.Sender.ID {
			return ErrSelfTransfer
		}
		if !req.Recipient.Active() {
			return ErrRecipientInactive
		}
	}
	if req.Amount < validation.MinTransactionAmount || req.Amount > validation.MaxTransactionAmount {
		return ErrInvalidAmount
	}
	if len(req.Note) > validation.MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// topUp charges the stored card for exactly the deficit, mints the
// shortfall to the sender's wallet, and re-reads the balance before
// anything acts on it. A top-up that cannot be confirmed is unwound
// immediately: the charge is refunded before the payment fails.
func (s *service) topUp(ctx context.Context, transferID string, sender *models.User, plan *funding.Plan, cents int64) (string, error) {
	memo := fmt.Sprintf("kolo top-up %s", transferID)
	chargeRef, err := s.cards.Charge(ctx, plan.Card, cents, memo)
	if err != nil {
		return "", fmt.Errorf("card funding failed: %w", err)
	}

	deficitLedger := plan.RequiredLedger - plan.BalanceLedger
	if _, err := s.minter.Mint(ctx, sender.WalletAddress, deficitLedger); err != nil {
		s.unwindCharge(ctx, transferID, chargeRef, cents, fmt.Sprintf("top-up mint failed: %v", err))
		return "", fmt.Errorf("top-up failed: %w", err)
	}

	bal, err := s.oracle.GetBalance(ctx, sender.WalletAddress)
	if err != nil {
		s.unwindCharge(ctx, transferID, chargeRef, cents, fmt.Sprintf("post top-up balance read failed: %v", err))
		return "", fmt.Errorf("top-up verification failed: %w", err)
	}
	if bal.Raw < plan.RequiredLedger {
		s.unwindCharge(ctx, transferID, chargeRef, cents, "balance short after top-up")
		return "", ErrTopUpShort
	}

	return chargeRef, nil
}

func (s *service) settleMember(ctx context.Context, transferID string, req Request, plan *funding.Plan, chargeRef *string, chargedCents int64) (*Result, error) {
	transfer := &models.Transfer{
		ID:                 transferID,
		SenderID:           req.Sender.ID,
		RecipientID:        req.Recipient.ID,
		AmountRequested:    req.Amount,
		AmountLedger:       plan.RequiredLedger,
		FundingSource:      plan.Source,
		ProcessorChargeRef: chargeRef,
		Status:             models.TransferStatusProcessing,
		Note:               req.Note,
	}
	if err := s.transfers.Create(ctx, transfer); err != nil {
		// The transfer row never existed, but a card charge may
		// have; unwind it rather than orphan it.
		if chargeRef != nil {
			s.unwindCharge(ctx, transferID, *chargeRef, chargedCents, "transfer record creation failed")
		}
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	s.writeReceipt(ctx, transfer, nil, req.Kind)

	txRef, err := s.settler.Settle(ctx, req.Sender.WalletAddress, req.Recipient.WalletAddress, transfer.AmountLedger)
	if err != nil {
		return nil, s.compensate(ctx, transfer, chargedCents, err)
	}

	now := time.Now()
	if err := s.transfers.MarkCompleted(ctx, transfer.ID, txRef, now); err != nil {
		// The units moved on the ledger but the record is stuck in
		// PROCESSING. Refunding would pay the recipient twice, so
		// escalate to an operator instead.
		details := fmt.Sprintf("settled on ledger (tx %s) but completion update failed: %v", txRef, err)
		s.recon.OpenCase(ctx, transfer.ID, models.ReconciliationSettlementAmbiguous, details)
		if s.notifier != nil {
			s.notifier.TransferNeedsSupport(ctx, transfer)
		}
		return nil, fmt.Errorf("%w: outcome pending review", ErrPaymentFailed)
	}
	transfer.Status = models.TransferStatusCompleted
	transfer.LedgerTxRef = &txRef
	transfer.CompletedAt = &now

	if s.notifier != nil {
		s.notifier.TransferCompleted(ctx, transfer)
	}

	return &Result{Transfer: transfer, Message: "payment sent"}, nil
}

func (s *service) createEscrow(ctx context.Context, transferID string, req Request, plan *funding.Plan, chargeRef *string, chargedCents int64) (*Result, error) {
	pending, err := s.escrow.Create(ctx, req.Sender, req.RecipientContact, req.Amount, plan.Source, chargeRef, req.Note)
	if err != nil {
		// The escrow row never existed, but a card charge may
		// have; unwind it rather than orphan it.
		if chargeRef != nil {
			s.unwindCharge(ctx, transferID, *chargeRef, chargedCents, "pending transfer creation failed")
		}
		return nil, fmt.Errorf("failed to create pending transfer: %w", err)
	}

	s.writeReceipt(ctx, nil, pending, req.Kind)

	return &Result{
		Pending:    pending,
		ClaimToken: pending.ClaimToken,
		Message:    "payment is waiting to be claimed",
	}, nil
}

// writeReceipt appends the durable audit record at creation time, so
// it survives whatever later happens on the ledger or at the
// processor.
func (s *service) writeReceipt(ctx context.Context, t *models.Transfer, p *models.PendingTransfer, kind string) {
	if kind == "" {
		kind = models.TransferKindPersonal
	}

	receipt := &models.Receipt{
		ID:   uuid.NewString(),
		Kind: kind,
	}
	meta := models.JSON{"rate_version": models.ConversionRateVersion}
	switch {
	case t != nil:
		receipt.TransferID = &t.ID
		meta["funding_source"] = t.FundingSource
		meta["amount"] = t.AmountRequested
		if t.ProcessorChargeRef != nil {
			meta["charge_ref"] = *t.ProcessorChargeRef
		}
	case p != nil:
		receipt.PendingTransferID = &p.ID
		meta["funding_source"] = p.FundingSource
		meta["amount"] = p.AmountRequested
		if p.ProcessorChargeRef != nil {
			meta["charge_ref"] = *p.ProcessorChargeRef
		}
	}
	receipt.Metadata = meta

	if err := s.receipts.Create(ctx, receipt); err != nil {
		log.Printf("failed to write receipt for transfer: %v", err)
	}
}
