package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kolo/internal/models"

	"gorm.io/gorm"
)

type transferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *transferRepository) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &transfer, nil
}

func (r *transferRepository) MarkCompleted(ctx context.Context, id, ledgerTxRef string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Transfer{}).
		Where("id = ? AND status = ?", id, models.TransferStatusProcessing).
		Updates(map[string]interface{}{
			"status":        models.TransferStatusCompleted,
			"ledger_tx_ref": ledgerTxRef,
			"completed_at":  at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete transfer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransferState
	}
	return nil
}

func (r *transferRepository) MarkFailed(ctx context.Context, id, reason string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Transfer{}).
		Where("id = ? AND status = ?", id, models.TransferStatusProcessing).
		Updates(map[string]interface{}{
			"status":         models.TransferStatusFailed,
			"failure_reason": reason,
			"failed_at":      at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to fail transfer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransferState
	}
	return nil
}

func (r *transferRepository) ListBySender(ctx context.Context, senderID uint, limit, offset int) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

type pendingTransferRepository struct {
	db *gorm.DB
}

func NewPendingTransferRepository(db *gorm.DB) PendingTransferRepository {
	return &pendingTransferRepository{db: db}
}

func (r *pendingTransferRepository) Create(ctx context.Context, pending *models.PendingTransfer) error {
	if err := r.db.WithContext(ctx).Create(pending).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateClaimToken
		}
		return fmt.Errorf("failed to create pending transfer: %w", err)
	}
	return nil
}

func (r *pendingTransferRepository) GetByID(ctx context.Context, id string) (*models.PendingTransfer, error) {
	var pending models.PendingTransfer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("failed to get pending transfer: %w", err)
	}
	return &pending, nil
}

func (r *pendingTransferRepository) GetByClaimToken(ctx context.Context, token string) (*models.PendingTransfer, error) {
	var pending models.PendingTransfer
	if err := r.db.WithContext(ctx).Where("claim_token = ?", token).First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("failed to get pending transfer: %w", err)
	}
	return &pending, nil
}

func (r *pendingTransferRepository) Claim(ctx context.Context, id string, claimantID uint, ledgerTxRef string, at time.Time) error {
	updates := map[string]interface{}{
		"status":        models.PendingStatusClaimed,
		"claimed_by_id": claimantID,
		"claimed_at":    at,
	}
	// An empty ref means settlement has not happened yet; the column
	// stays NULL so the claim can still be reopened.
	if ledgerTxRef != "" {
		updates["ledger_tx_ref"] = ledgerTxRef
	}
	result := r.db.WithContext(ctx).
		Model(&models.PendingTransfer{}).
		Where("id = ? AND status = ?", id, models.PendingStatusClaimable).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to claim pending transfer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPendingAlreadySettled
	}
	return nil
}

func (r *pendingTransferRepository) Reopen(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PendingTransfer{}).
		Where("id = ? AND status = ? AND ledger_tx_ref IS NULL", id, models.PendingStatusClaimed).
		Updates(map[string]interface{}{
			"status":        models.PendingStatusClaimable,
			"claimed_by_id": nil,
			"claimed_at":    nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to reopen pending transfer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPendingAlreadySettled
	}
	return nil
}

func (r *pendingTransferRepository) SetLedgerTxRef(ctx context.Context, id, ledgerTxRef string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PendingTransfer{}).
		Where("id = ? AND status = ?", id, models.PendingStatusClaimed).
		Update("ledger_tx_ref", ledgerTxRef)
	if result.Error != nil {
		return fmt.Errorf("failed to set ledger ref: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

func (r *pendingTransferRepository) ExpireDue(ctx context.Context, now time.Time) ([]models.PendingTransfer, error) {
	var expired []models.PendingTransfer

	// The conditional UPDATE is the idempotency guard: a second
	// sweeper racing on the same rows affects none of them and
	// returns an empty slice.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []models.PendingTransfer
		if err := tx.
			Where("status = ? AND expires_at < ?", models.PendingStatusClaimable, now).
			Find(&due).Error; err != nil {
			return err
		}

		for _, p := range due {
			result := tx.Model(&models.PendingTransfer{}).
				Where("id = ? AND status = ?", p.ID, models.PendingStatusClaimable).
				Update("status", models.PendingStatusExpired)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				p.Status = models.PendingStatusExpired
				expired = append(expired, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expire pending transfers: %w", err)
	}
	return expired, nil
}

func (r *pendingTransferRepository) ListBySender(ctx context.Context, senderID uint, limit, offset int) ([]models.PendingTransfer, error) {
	var pendings []models.PendingTransfer
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&pendings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transfers: %w", err)
	}
	return pendings, nil
}
