package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors wrap one of these so callers can match either.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrExternalService     = errors.New("external generation service failed")
	ErrUnprocessableOutput = errors.New("generated ledger is not valid")
)

var (
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type, expected %s", ErrInvalidInput, ContentTypePDF)
	ErrEmptyDocument       = fmt.Errorf("%w: document is empty", ErrInvalidInput)
	ErrFileTooLarge        = fmt.Errorf("%w: file exceeds maximum allowed size", ErrInvalidInput)
	ErrEmptyCorrection     = fmt.Errorf("%w: correct output must not be empty", ErrInvalidInput)
	ErrGeneratorTimeout    = fmt.Errorf("%w: request timed out", ErrExternalService)
	ErrErrorDocument       = errors.New("error documents cannot be exported")
)

// UnprocessableError carries the validator's reason after the repair attempt also failed.
type UnprocessableError struct {
	Reason string
}

func (e *UnprocessableError) Error() string {
	return fmt.Sprintf("%s after correction: %s", ErrUnprocessableOutput, e.Reason)
}

func (e *UnprocessableError) Unwrap() error {
	return ErrUnprocessableOutput
}
