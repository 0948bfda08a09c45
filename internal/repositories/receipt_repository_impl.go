package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kolo/internal/models"

	"gorm.io/gorm"
)

var ErrCaseNotFound = errors.New("reconciliation case not found")

type receiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}
	return nil
}

func (r *receiptRepository) ListForTransfer(ctx context.Context, transferID string) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := r.db.WithContext(ctx).
		Where("transfer_id = ? OR pending_transfer_id = ?", transferID, transferID).
		Order("created_at ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	return receipts, nil
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

type reconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) Create(ctx context.Context, c *models.ReconciliationCase) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create reconciliation case: %w", err)
	}
	return nil
}

func (r *reconciliationRepository) GetByID(ctx context.Context, id uint) (*models.ReconciliationCase, error) {
	var c models.ReconciliationCase
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to get reconciliation case: %w", err)
	}
	return &c, nil
}

func (r *reconciliationRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.ReconciliationCase, int64, error) {
	var cases []models.ReconciliationCase
	var total int64

	q := r.db.WithContext(ctx).Model(&models.ReconciliationCase{}).
		Where("status = ?", models.ReconciliationOpen)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reconciliation cases: %w", err)
	}
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&cases).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reconciliation cases: %w", err)
	}
	return cases, total, nil
}

func (r *reconciliationRepository) Resolve(ctx context.Context, id uint, resolution string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.ReconciliationCase{}).
		Where("id = ? AND status = ?", id, models.ReconciliationOpen).
		Updates(map[string]interface{}{
			"status":      models.ReconciliationResolved,
			"resolution":  resolution,
			"resolved_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to resolve reconciliation case: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCaseNotFound
	}
	return nil
}
