package port

import (
	"context"

	"bananaledger/internal/domain"
)

// CorrectionRepository defines the contract for the append-only correction log.
type CorrectionRepository interface {
	Insert(ctx context.Context, rec *domain.CorrectionRecord) error
	ListRecentBySource(ctx context.Context, source domain.Source, limit int) ([]domain.CorrectionRecord, error)
}
