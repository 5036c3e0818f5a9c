package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"bananaledger/internal/config"
	"bananaledger/internal/domain"
	"bananaledger/internal/generator"
	"bananaledger/internal/ledger"
	"bananaledger/internal/logger"
	"bananaledger/internal/metrics"
	"bananaledger/internal/port"
)

// ConvertInput is the DTO for converting one uploaded statement.
type ConvertInput struct {
	FileBytes   []byte
	ContentType string
	FileName    string
	Source      string // optional; inferred from FileName when blank
}

// ConversionService turns payout statements into validated ledger documents.
type ConversionService interface {
	Convert(ctx context.Context, input *ConvertInput) (*domain.Conversion, error)
}

type conversionService struct {
	gen         port.LedgerGenerator
	corrections CorrectionService // nil disables few-shot examples
	storage     port.ObjectStorage
	fs          afero.Fs
	cfg         config.ConversionConfig
	archive     config.S3Config
	log         zerolog.Logger
}

// NewConversionService creates a new ConversionService implementation.
// corrections and storage may be nil.
func NewConversionService(
	gen port.LedgerGenerator,
	corrections CorrectionService,
	storage port.ObjectStorage,
	fs afero.Fs,
	cfg config.ConversionConfig,
	archive config.S3Config,
	log zerolog.Logger,
) ConversionService {
	return &conversionService{
		gen:         gen,
		corrections: corrections,
		storage:     storage,
		fs:          fs,
		cfg:         cfg,
		archive:     archive,
		log:         log,
	}
}

func (s *conversionService) Convert(ctx context.Context, input *ConvertInput) (*domain.Conversion, error) {
	start := time.Now()
	source := DetectSource(input.Source, input.FileName)
	log := logger.FromContext(ctx, s.log).With().Str("source", string(source)).Logger()
	if source != domain.SourceUnknown && !source.IsKnown() {
		log.Warn().Msg("conversionService.Convert: unrecognized source tag, examples are looked up under it as given")
	}

	conv, err := s.convert(logger.WithContext(ctx, log), source, input)

	outcome := outcomeOf(conv, err)
	metrics.ConversionsTotal.WithLabelValues(string(source), outcome).Inc()
	metrics.ConversionDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Warn().Err(err).Str("outcome", outcome).Msg("conversionService.Convert: conversion failed")
		return nil, err
	}
	log.Info().
		Int("attempts", conv.Attempts).
		Bool("error_document", conv.IsErrorDocument).
		Str("model", conv.ModelUsed).
		Dur("elapsed", time.Since(start)).
		Msg("conversionService.Convert: conversion completed")
	return conv, nil
}

func (s *conversionService) convert(ctx context.Context, source domain.Source, input *ConvertInput) (*domain.Conversion, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	fingerprint := Fingerprint(input.FileBytes)
	instructions := s.buildInstructions(ctx, source)

	doc, cleanup, err := s.stage(input)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	out, err := s.call(ctx, metrics.CallGenerate, func(ctx context.Context) (*port.GenerateOutput, error) {
		return s.gen.Generate(ctx, port.GenerateInput{Instructions: instructions, Document: doc})
	})
	if err != nil {
		return nil, err
	}

	attempts := 1
	lines := ledger.Normalize(out.Text)
	if verr := ledger.ValidateLines(lines); verr != nil {
		logger.FromContext(ctx, s.log).Info().
			Str("reason", verr.Error()).
			Msg("conversionService.convert: output rejected, requesting correction")

		repair := port.RepairInput{
			Instructions:  instructions,
			FailureReason: verr.Error(),
			PriorText:     strings.TrimSpace(out.Text),
		}
		out, err = s.call(ctx, metrics.CallRepair, func(ctx context.Context) (*port.GenerateOutput, error) {
			return s.gen.Repair(ctx, repair)
		})
		if err != nil {
			return nil, err
		}

		attempts = 2
		lines = ledger.Normalize(out.Text)
		if verr := ledger.ValidateLines(lines); verr != nil {
			return nil, &domain.UnprocessableError{Reason: verr.Error()}
		}
	}

	conv := &domain.Conversion{
		Text:            strings.Join(lines, "\n"),
		Lines:           lines,
		Source:          source,
		Fingerprint:     fingerprint,
		Attempts:        attempts,
		ModelUsed:       out.ModelUsed,
		IsErrorDocument: ledger.IsErrorDocument(lines),
	}

	s.archiveStatement(ctx, source, fingerprint, input.FileBytes)
	return conv, nil
}

func (s *conversionService) checkInput(input *ConvertInput) error {
	if !isPDF(input.ContentType) {
		return domain.ErrUnsupportedFileType
	}
	if len(input.FileBytes) == 0 {
		return domain.ErrEmptyDocument
	}
	if limit := s.cfg.MaxUploadBytes(); limit > 0 && int64(len(input.FileBytes)) > limit {
		return domain.ErrFileTooLarge
	}
	return nil
}

// buildInstructions renders the rule text plus recent corrections for source.
// A failing correction store degrades to the bare rules.
func (s *conversionService) buildInstructions(ctx context.Context, source domain.Source) string {
	if s.corrections == nil || s.cfg.MaxExamples <= 0 {
		return generator.BuildInstructions(source, nil)
	}
	examples, err := s.corrections.RecentExamples(ctx, source, s.cfg.MaxExamples)
	if err != nil {
		logger.FromContext(ctx, s.log).Warn().Err(err).
			Msg("conversionService.buildInstructions: continuing without examples")
		examples = nil
	}
	return generator.BuildInstructions(source, examples)
}

// stage writes the upload to a temporary file that lives only for the
// generator calls. The returned cleanup removes it.
func (s *conversionService) stage(input *ConvertInput) (port.Document, func(), error) {
	f, err := afero.TempFile(s.fs, s.cfg.TempDir, "statement-*.pdf")
	if err != nil {
		return port.Document{}, nil, fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()
	cleanup := func() {
		if rmErr := s.fs.Remove(name); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", name).Msg("conversionService.stage: removing temp file")
		}
	}

	if _, err := f.Write(input.FileBytes); err != nil {
		_ = f.Close()
		cleanup()
		return port.Document{}, nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return port.Document{}, nil, fmt.Errorf("closing temp file: %w", err)
	}

	return port.Document{
		FS:          s.fs,
		Path:        name,
		FileName:    input.FileName,
		ContentType: domain.ContentTypePDF,
		Size:        int64(len(input.FileBytes)),
	}, cleanup, nil
}

// call runs one generator request under the per-call timeout and classifies
// its failure.
func (s *conversionService) call(
	ctx context.Context, kind string, fn func(context.Context) (*port.GenerateOutput, error),
) (*port.GenerateOutput, error) {
	metrics.GeneratorCallsTotal.WithLabelValues(kind).Inc()

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout())
	defer cancel()

	out, err := fn(callCtx)
	if err != nil {
		if ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)) {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrGeneratorTimeout, kind, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExternalService, kind, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s: empty response", domain.ErrExternalService, kind)
	}
	return out, nil
}

// archiveStatement uploads the original PDF when an archive is configured.
// Failures are logged only.
func (s *conversionService) archiveStatement(ctx context.Context, source domain.Source, fingerprint string, data []byte) {
	if s.storage == nil {
		return
	}
	key := ArchiveKey(s.archive.Prefix, source, fingerprint)
	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.archive.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: domain.ContentTypePDF,
		Size:        int64(len(data)),
		Metadata:    map[string]string{"source": string(source), "fingerprint": fingerprint},
	})
	if err != nil {
		metrics.ArchiveFailures.Inc()
		logger.FromContext(ctx, s.log).Warn().Err(err).Str("key", key).
			Msg("conversionService.archiveStatement: archive upload failed")
		return
	}
	if out != nil && out.Existing {
		logger.FromContext(ctx, s.log).Debug().Str("key", key).
			Msg("conversionService.archiveStatement: statement already archived")
	}
}

// DetectSource resolves the platform tag: an explicit value wins, then a
// platform name found in the file name, otherwise unknown.
func DetectSource(explicit, fileName string) domain.Source {
	if strings.TrimSpace(explicit) != "" {
		return domain.NormalizeSource(explicit)
	}
	name := strings.ToLower(path.Base(strings.ReplaceAll(fileName, "\\", "/")))
	for _, src := range domain.KnownSources {
		if strings.Contains(name, string(src)) {
			return src
		}
	}
	return domain.SourceUnknown
}

// Fingerprint returns the hex SHA-256 of a statement.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ArchiveKey builds the object key for an archived statement.
func ArchiveKey(prefix string, source domain.Source, fingerprint string) string {
	return path.Join(prefix, string(source), fingerprint+".pdf")
}

func isPDF(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.EqualFold(strings.TrimSpace(mediaType), domain.ContentTypePDF)
}

func outcomeOf(conv *domain.Conversion, err error) string {
	switch {
	case err == nil && conv.IsErrorDocument:
		return metrics.OutcomeErrorDocument
	case err == nil:
		return metrics.OutcomeValid
	case errors.Is(err, domain.ErrInvalidInput):
		return metrics.OutcomeInvalidInput
	case errors.Is(err, domain.ErrUnprocessableOutput):
		return metrics.OutcomeUnprocessable
	default:
		return metrics.OutcomeExternalFailed
	}
}
