// Package escrow holds transfers addressed to contacts that are not
// members yet. No ledger value moves at creation; the sender keeps
// the funds until the recipient claims or the claim window lapses.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kolo/internal/ledger"
	"kolo/internal/models"
	"kolo/internal/repositories"
	"kolo/internal/services/settlement"
	"kolo/internal/utils"

	"github.com/google/uuid"
)

// Notifier is the slice of the notification service the escrow
// manager uses.
type Notifier interface {
	EscrowCreated(ctx context.Context, sender *models.User, p *models.PendingTransfer)
	EscrowClaimed(ctx context.Context, p *models.PendingTransfer)
	EscrowExpired(ctx context.Context, p *models.PendingTransfer)
}

// Service manages escrowed transfers end to end.
type Service interface {
	Create(ctx context.Context, sender *models.User, contact string, amount float64, fundingSource string, chargeRef *string, note string) (*models.PendingTransfer, error)
	Claim(ctx context.Context, token string, claimant *models.User) (*models.PendingTransfer, error)
	Sweep(ctx context.Context) (int, error)
}

type service struct {
	repo        repositories.PendingTransferRepository
	users       repositories.UserRepository
	settler     settlement.Executor
	notifier    Notifier
	claimWindow time.Duration
}

// NewService creates a new escrow manager.
func NewService(
	repo repositories.PendingTransferRepository,
	users repositories.UserRepository,
	settler settlement.Executor,
	notifier Notifier,
	claimWindow time.Duration,
) Service {
	if repo == nil {
		panic("pending transfer repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if settler == nil {
		panic("settlement executor is required")
	}
	if claimWindow == 0 {
		claimWindow = 7 * 24 * time.Hour
	}
	return &service{
		repo:        repo,
		users:       users,
		settler:     settler,
		notifier:    notifier,
		claimWindow: claimWindow,
	}
}

// Create records a claimable transfer and hands the claim token to
// the notifier for out-of-band delivery. The token is generated from
// crypto/rand and unique system-wide; a collision on the unique index
// is retried with a fresh token.
func (s *service) Create(ctx context.Context, sender *models.User, contact string, amount float64, fundingSource string, chargeRef *string, note string) (*models.PendingTransfer, error) {
	pending := &models.PendingTransfer{
		ID:                 uuid.NewString(),
		SenderID:           sender.ID,
		RecipientContact:   contact,
		AmountRequested:    amount,
		FundingSource:      fundingSource,
		ProcessorChargeRef: chargeRef,
		Status:             models.PendingStatusClaimable,
		ExpiresAt:          time.Now().Add(s.claimWindow),
		Note:               note,
	}

	for attempt := 0; attempt < 3; attempt++ {
		token, err := utils.GenerateSecureCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate claim token: %w", err)
		}
		pending.ClaimToken = token

		err = s.repo.Create(ctx, pending)
		if err == nil {
			if s.notifier != nil {
				s.notifier.EscrowCreated(ctx, sender, pending)
			}
			return pending, nil
		}
		if err != repositories.ErrDuplicateClaimToken {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to create pending transfer: %w", repositories.ErrDuplicateClaimToken)
}

// Claim settles an escrowed transfer to the claiming member. The
// PENDING_CLAIM -> CLAIMED transition happens exactly once: the
// conditional update is the guard, so a second claim on the same
// token fails regardless of timing.
func (s *service) Claim(ctx context.Context, token string, claimant *models.User) (*models.PendingTransfer, error) {
	pending, err := s.repo.GetByClaimToken(ctx, token)
	if err != nil {
		if err == repositories.ErrPendingNotFound {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	switch pending.Status {
	case models.PendingStatusClaimed:
		return nil, ErrAlreadyClaimed
	case models.PendingStatusExpired:
		return nil, ErrEscrowExpired
	}
	if pending.Expired(time.Now()) {
		// Past the window but not yet swept; treat as expired
		// rather than racing the sweeper.
		return nil, ErrEscrowExpired
	}
	if pending.SenderID == claimant.ID {
		return nil, ErrClaimantIsSender
	}

	sender, err := s.users.GetByID(pending.SenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}

	// Take the row before touching the ledger so a concurrent claim
	// on the same token cannot settle twice. The loser of the race
	// gets zero rows affected here and never reaches settlement.
	if err := s.repo.Claim(ctx, pending.ID, claimant.ID, "", time.Now()); err != nil {
		if err == repositories.ErrPendingAlreadySettled {
			return nil, ErrAlreadyClaimed
		}
		return nil, err
	}

	txRef, err := s.settler.Settle(ctx, sender.WalletAddress, claimant.WalletAddress, models.ToLedgerUnits(pending.AmountRequested))
	if err != nil {
		// A clean failure reopens the escrow for a later attempt. An
		// ambiguous outcome must not: the value may already have
		// moved, so the record stays CLAIMED for manual review.
		if !errors.Is(err, ledger.ErrSettlementAmbiguous) {
			if reopenErr := s.repo.Reopen(ctx, pending.ID); reopenErr != nil {
				log.Printf("failed to reopen pending transfer %s after settlement failure: %v", pending.ID, reopenErr)
			}
		} else {
			log.Printf("ambiguous claim settlement on pending transfer %s; left claimed for review", pending.ID)
		}
		return nil, fmt.Errorf("claim settlement failed: %w", err)
	}

	if err := s.repo.SetLedgerTxRef(ctx, pending.ID, txRef); err != nil {
		log.Printf("failed to record ledger ref %s on pending transfer %s: %v", txRef, pending.ID, err)
	}

	claimed, err := s.repo.GetByID(ctx, pending.ID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.EscrowClaimed(ctx, claimed)
	}
	return claimed, nil
}

// Sweep expires claimable transfers past their deadline and notifies
// each sender once. Safe to run concurrently on multiple instances:
// the conditional transition in the repository means a losing sweeper
// sees zero newly expired rows and sends nothing.
func (s *service) Sweep(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpireDue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	for i := range expired {
		if s.notifier != nil {
			s.notifier.EscrowExpired(ctx, &expired[i])
		}
	}
	return len(expired), nil
}
