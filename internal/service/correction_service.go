package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bananaledger/internal/domain"
	"bananaledger/internal/logger"
	"bananaledger/internal/metrics"
	"bananaledger/internal/port"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// SubmitCorrectionInput is the DTO for storing a human-approved ledger.
type SubmitCorrectionInput struct {
	Source              string
	InvoiceID           *string
	DocumentFingerprint *string
	ModelOutput         string
	CorrectOutput       string
}

// CorrectionService defines the correction store contract.
type CorrectionService interface {
	Submit(ctx context.Context, input *SubmitCorrectionInput) (*domain.CorrectionRecord, error)
	RecentExamples(ctx context.Context, source domain.Source, limit int) ([]domain.CorrectionExample, error)
	ListRecent(ctx context.Context, source domain.Source, limit int) ([]domain.CorrectionRecord, error)
}

type correctionService struct {
	repo port.CorrectionRepository
	log  zerolog.Logger
}

// NewCorrectionService creates a new CorrectionService implementation.
func NewCorrectionService(repo port.CorrectionRepository, log zerolog.Logger) CorrectionService {
	return &correctionService{repo: repo, log: log}
}

func (s *correctionService) Submit(ctx context.Context, input *SubmitCorrectionInput) (*domain.CorrectionRecord, error) {
	if strings.TrimSpace(input.CorrectOutput) == "" {
		return nil, domain.ErrEmptyCorrection
	}

	rec := &domain.CorrectionRecord{
		CreatedAt:           time.Now().UTC(),
		Source:              domain.NormalizeSource(input.Source),
		InvoiceID:           optional(input.InvoiceID),
		DocumentFingerprint: optional(input.DocumentFingerprint),
		ModelOutput:         input.ModelOutput,
		CorrectOutput:       input.CorrectOutput,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("storing correction: %w", err)
	}

	metrics.CorrectionsSubmitted.WithLabelValues(string(rec.Source)).Inc()
	logger.FromContext(ctx, s.log).Info().
		Int64("correction_id", rec.ID).
		Str("source", string(rec.Source)).
		Msg("correctionService.Submit: correction stored")
	return rec, nil
}

func (s *correctionService) RecentExamples(ctx context.Context, source domain.Source, limit int) ([]domain.CorrectionExample, error) {
	if limit <= 0 {
		return []domain.CorrectionExample{}, nil
	}
	records, err := s.repo.ListRecentBySource(ctx, domain.NormalizeSource(string(source)), limit)
	if err != nil {
		return nil, fmt.Errorf("loading examples: %w", err)
	}

	examples := make([]domain.CorrectionExample, 0, len(records))
	for i := range records {
		if len(examples) == limit {
			break
		}
		examples = append(examples, records[i].Example())
	}
	return examples, nil
}

func (s *correctionService) ListRecent(ctx context.Context, source domain.Source, limit int) ([]domain.CorrectionRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	records, err := s.repo.ListRecentBySource(ctx, domain.NormalizeSource(string(source)), limit)
	if err != nil {
		return nil, fmt.Errorf("listing corrections: %w", err)
	}
	if records == nil {
		records = []domain.CorrectionRecord{}
	}
	return records, nil
}

// optional trims an optional string and drops it when blank.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
