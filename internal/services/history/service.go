// Package history merges settled, received, and pending transfers
// into one chronological view. Read-only; ordering is stable on
// (created_at desc, id desc) so "load more" pagination never gaps or
// duplicates.
package history

import (
	"context"

	"kolo/internal/repositories"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Service is the history aggregator.
type Service interface {
	GetHistory(ctx context.Context, userID uint, limit, offset int) ([]repositories.HistoryEntry, int64, error)
}

type service struct {
	repo repositories.HistoryRepository
}

// NewService creates a new history aggregator.
func NewService(repo repositories.HistoryRepository) Service {
	if repo == nil {
		panic("history repository is required")
	}
	return &service{repo: repo}
}

func (s *service) GetHistory(ctx context.Context, userID uint, limit, offset int) ([]repositories.HistoryEntry, int64, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetHistory(ctx, userID, limit, offset)
}
