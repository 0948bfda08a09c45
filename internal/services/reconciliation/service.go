// Package reconciliation tracks the failures the system cannot heal
// on its own: refunds that failed after money left a member, and
// settlements whose on-chain outcome is unknown. Each becomes an
// operator-visible case instead of a silent retry.
package reconciliation

import (
	"context"
	"log"
	"time"

	"kolo/internal/models"
	"kolo/internal/repositories"
)

// Service manages unresolved-state records.
type Service interface {
	OpenCase(ctx context.Context, transferID, kind, details string) error
	ListOpen(ctx context.Context, limit, offset int) ([]models.ReconciliationCase, int64, error)
	Resolve(ctx context.Context, id uint, resolution string) error
}

type service struct {
	repo repositories.ReconciliationRepository
}

// NewService creates a new reconciliation service.
func NewService(repo repositories.ReconciliationRepository) Service {
	if repo == nil {
		panic("reconciliation repository is required")
	}
	return &service{repo: repo}
}

func (s *service) OpenCase(ctx context.Context, transferID, kind, details string) error {
	c := &models.ReconciliationCase{
		TransferID: transferID,
		Kind:       kind,
		Status:     models.ReconciliationOpen,
		Details:    details,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		// The case is the last line of defense; if even this write
		// fails the log line is all that remains.
		log.Printf("CRITICAL: failed to open %s case for transfer %s: %v", kind, transferID, err)
		return err
	}
	return nil
}

func (s *service) ListOpen(ctx context.Context, limit, offset int) ([]models.ReconciliationCase, int64, error) {
	return s.repo.ListOpen(ctx, limit, offset)
}

func (s *service) Resolve(ctx context.Context, id uint, resolution string) error {
	return s.repo.Resolve(ctx, id, resolution, time.Now())
}
