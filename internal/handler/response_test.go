package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"bananaledger/internal/domain"
	"bananaledger/internal/generator"
	"bananaledger/internal/handler"
	"bananaledger/internal/ledger"
)

func TestMapDomainError(t *testing.T) {
	rateLimited := fmt.Errorf("%w: generate: %w", domain.ErrExternalService,
		generator.NewRateLimitError("openai", errors.New("429"), 5))

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"rate limit wins over external", rateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"unsupported type", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"empty document", domain.ErrEmptyDocument, http.StatusBadRequest, "EMPTY_DOCUMENT"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"empty correction", domain.ErrEmptyCorrection, http.StatusBadRequest, "EMPTY_CORRECTION"},
		{"generic invalid input", fmt.Errorf("%w: bad source", domain.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"timeout", fmt.Errorf("generate: %w", domain.ErrGeneratorTimeout), http.StatusGatewayTimeout, "GENERATOR_TIMEOUT"},
		{"external", fmt.Errorf("%w: 500", domain.ErrExternalService), http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR"},
		{"unprocessable", &domain.UnprocessableError{Reason: "x"}, http.StatusUnprocessableEntity, "UNPROCESSABLE_OUTPUT"},
		{"invalid ledger", fmt.Errorf("export: %w", &ledger.ValidationError{Line: 2, Reason: "x"}), http.StatusUnprocessableEntity, "INVALID_LEDGER"},
		{"error document", domain.ErrErrorDocument, http.StatusUnprocessableEntity, "ERROR_DOCUMENT"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestMapDomainError_UnprocessableCarriesReason(t *testing.T) {
	_, _, msg := handler.MapDomainError(&domain.UnprocessableError{Reason: "line 2: wrong number of columns (7)"})

	assert.Contains(t, msg, "line 2: wrong number of columns (7)")
}
