// Package notification derives user-facing records from persisted
// transfer status. Notifications follow state, never the reverse: a
// failed write here never changes what happened to the transfer.
package notification

import (
	"context"
	"fmt"
	"log"

	"kolo/internal/config"
	"kolo/internal/models"
	"kolo/internal/repositories"
)

// Messenger delivers out-of-band claim messages (SMS/email). Delivery
// is best effort; failure degrades recipient awareness but never
// fails the transfer.
type Messenger interface {
	SendClaimMessage(ctx context.Context, contact, senderName string, amount float64, claimToken, note string) error
}

// Service writes notifications and fans out claim messages.
type Service struct {
	repo      repositories.NotificationRepository
	messenger Messenger
}

// NewService creates a new notification service.
func NewService(repo repositories.NotificationRepository, messenger Messenger) *Service {
	if repo == nil {
		panic("notification repository is required")
	}
	return &Service{repo: repo, messenger: messenger}
}

// TransferCompleted notifies both parties of a settled transfer.
func (s *Service) TransferCompleted(ctx context.Context, t *models.Transfer) {
	s.append(ctx, t.SenderID, models.NotificationTransferSent,
		fmt.Sprintf("You sent %.2f", t.AmountRequested),
		models.JSON{"transfer_id": t.ID})
	s.append(ctx, t.RecipientID, models.NotificationTransferReceived,
		fmt.Sprintf("You received %.2f", t.AmountRequested),
		models.JSON{"transfer_id": t.ID})
}

// TransferRefunded tells the sender their card charge was reversed
// after a failed settlement.
func (s *Service) TransferRefunded(ctx context.Context, t *models.Transfer, refundedAmount float64) {
	s.append(ctx, t.SenderID, models.NotificationRefundIssued,
		fmt.Sprintf("Your payment could not be completed. %.2f was refunded to your card.", refundedAmount),
		models.JSON{"transfer_id": t.ID})
}

// TransferNeedsSupport tells the sender the system could not resolve
// the failure on its own.
func (s *Service) TransferNeedsSupport(ctx context.Context, t *models.Transfer) {
	s.append(ctx, t.SenderID, models.NotificationContactSupport,
		"Your payment could not be completed. Please contact support.",
		models.JSON{"transfer_id": t.ID})
}

// EscrowCreated notifies the sender and sends the claim link to the
// recipient contact.
func (s *Service) EscrowCreated(ctx context.Context, sender *models.User, p *models.PendingTransfer) {
	s.append(ctx, p.SenderID, models.NotificationEscrowCreated,
		fmt.Sprintf("Your payment of %.2f to %s is waiting to be claimed.", p.AmountRequested, p.RecipientContact),
		models.JSON{"pending_transfer_id": p.ID})

	if s.messenger == nil {
		return
	}
	if err := s.messenger.SendClaimMessage(ctx, p.RecipientContact, sender.Name, p.AmountRequested, p.ClaimToken, p.Note); err != nil {
		// Best effort only. The token stays out of production logs.
		if config.IsProduction() {
			log.Printf("claim message delivery failed for pending transfer %s: %v", p.ID, err)
		} else {
			log.Printf("claim message delivery failed for pending transfer %s (token %s): %v", p.ID, p.ClaimToken, err)
		}
	}
}

// EscrowClaimed notifies the sender their escrowed payment was claimed.
func (s *Service) EscrowClaimed(ctx context.Context, p *models.PendingTransfer) {
	s.append(ctx, p.SenderID, models.NotificationEscrowClaimed,
		fmt.Sprintf("Your payment of %.2f to %s was claimed.", p.AmountRequested, p.RecipientContact),
		models.JSON{"pending_transfer_id": p.ID})
}

// EscrowExpired notifies the sender their escrowed payment lapsed
// unclaimed. The sweep guarantees this fires once per record.
func (s *Service) EscrowExpired(ctx context.Context, p *models.PendingTransfer) {
	s.append(ctx, p.SenderID, models.NotificationEscrowExpired,
		fmt.Sprintf("Your payment of %.2f to %s expired unclaimed.", p.AmountRequested, p.RecipientContact),
		models.JSON{"pending_transfer_id": p.ID})
}

func (s *Service) append(ctx context.Context, userID uint, kind, message string, meta models.JSON) {
	n := &models.Notification{
		UserID:   userID,
		Kind:     kind,
		Message:  message,
		Metadata: meta,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("failed to record %s notification for user %d: %v", kind, userID, err)
	}
}
