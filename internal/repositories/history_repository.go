package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// HistoryEntry is one row of the merged transfer history view.
type HistoryEntry struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"` // sent / received / pending
	Status       string     `json:"status"`
	Amount       float64    `json:"amount"`
	Counterparty string     `json:"counterparty"`
	Note         string     `json:"note"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// HistoryRepository merges settled, received, and pending transfers
// into one chronological view.
type HistoryRepository interface {
	GetHistory(ctx context.Context, userID uint, limit, offset int) ([]HistoryEntry, int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

const historyUnion = `
SELECT id, 'sent' AS type, status, amount_requested AS amount,
       CAST(recipient_id AS TEXT) AS counterparty, note, created_at,
       NULL::timestamptz AS expires_at
  FROM transfers WHERE sender_id = @uid
UNION ALL
SELECT id, 'received' AS type, status, amount_requested AS amount,
       CAST(sender_id AS TEXT) AS counterparty, note, created_at,
       NULL::timestamptz AS expires_at
  FROM transfers WHERE recipient_id = @uid
UNION ALL
SELECT id, 'pending' AS type, status, amount_requested AS amount,
       recipient_contact AS counterparty, note, created_at, expires_at
  FROM pending_transfers WHERE sender_id = @uid
`

func (r *historyRepository) GetHistory(ctx context.Context, userID uint, limit, offset int) ([]HistoryEntry, int64, error) {
	var total int64
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM (%s) h", historyUnion)
	if err := r.db.WithContext(ctx).
		Raw(countSQL, map[string]interface{}{"uid": userID}).
		Scan(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count history: %w", err)
	}

	// Tie-break on id so pagination stays deterministic for equal
	// timestamps.
	pageSQL := fmt.Sprintf(
		"SELECT * FROM (%s) h ORDER BY created_at DESC, id DESC LIMIT @lim OFFSET @off",
		historyUnion,
	)

	var entries []HistoryEntry
	err := r.db.WithContext(ctx).
		Raw(pageSQL, map[string]interface{}{"uid": userID, "lim": limit, "off": offset}).
		Scan(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get history: %w", err)
	}
	return entries, total, nil
}
