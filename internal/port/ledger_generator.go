package port

import (
	"context"
	"io"

	"github.com/spf13/afero"
)

// Document points at the staged copy of an uploaded statement.
type Document struct {
	FS          afero.Fs
	Path        string
	FileName    string
	ContentType string
	Size        int64
}

// Open opens the staged file for streaming uploads.
func (d Document) Open() (io.ReadCloser, error) {
	return d.FS.Open(d.Path)
}

// ReadAll returns the staged file contents.
func (d Document) ReadAll() ([]byte, error) {
	return afero.ReadFile(d.FS, d.Path)
}

// GenerateInput carries the instructions and the statement for a first pass.
type GenerateInput struct {
	Instructions string
	Document     Document
}

// RepairInput carries a rejected output and the reason it was rejected.
type RepairInput struct {
	Instructions  string
	FailureReason string
	PriorText     string
}

// GenerateOutput is the raw text returned by the model.
type GenerateOutput struct {
	Text      string
	ModelUsed string
}

// LedgerGenerator abstracts the LLM service that transcribes statements.
type LedgerGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
	Repair(ctx context.Context, input RepairInput) (*GenerateOutput, error)
}
