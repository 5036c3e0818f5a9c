package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"bananaledger/internal/domain"
	"bananaledger/internal/port"
)

type correctionRepo struct {
	db *sqlx.DB
}

// NewCorrectionRepo creates a new PostgreSQL-backed CorrectionRepository.
func NewCorrectionRepo(db *sqlx.DB) port.CorrectionRepository {
	return &correctionRepo{db: db}
}

func (r *correctionRepo) Insert(ctx context.Context, rec *domain.CorrectionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO corrections (created_at, source, invoice_id, document_fingerprint, model_output, correct_output)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		rec.CreatedAt, rec.Source, rec.InvoiceID, rec.DocumentFingerprint,
		rec.ModelOutput, rec.CorrectOutput).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("correctionRepo.Insert: %w", err)
	}
	return nil
}

func (r *correctionRepo) ListRecentBySource(ctx context.Context, source domain.Source, limit int) ([]domain.CorrectionRecord, error) {
	var records []domain.CorrectionRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT id, created_at, source, invoice_id, document_fingerprint, model_output, correct_output
		FROM corrections WHERE source = $1 ORDER BY id DESC LIMIT $2`, source, limit)
	if err != nil {
		return nil, fmt.Errorf("correctionRepo.ListRecentBySource: %w", err)
	}
	if records == nil {
		records = []domain.CorrectionRecord{}
	}
	return records, nil
}
