package domain

import "time"

// CorrectionRecord is a human-approved fix for a generated ledger. Records are
// append-only: they are never updated or deleted.
type CorrectionRecord struct {
	ID                  int64     `db:"id" json:"id"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	Source              Source    `db:"source" json:"source"`
	InvoiceID           *string   `db:"invoice_id" json:"invoice_id,omitempty"`
	DocumentFingerprint *string   `db:"document_fingerprint" json:"document_fingerprint,omitempty"`
	ModelOutput         string    `db:"model_output" json:"model_output"`
	CorrectOutput       string    `db:"correct_output" json:"correct_output"`
}

// Example returns the few-shot pair carried by the record.
func (r *CorrectionRecord) Example() CorrectionExample {
	return CorrectionExample{ModelOutput: r.ModelOutput, CorrectOutput: r.CorrectOutput}
}

// CorrectionExample is a (wrong output, corrected output) pair injected into prompts.
type CorrectionExample struct {
	ModelOutput   string `json:"model_output"`
	CorrectOutput string `json:"correct_output"`
}

// Conversion is the result of turning one statement into a ledger document.
type Conversion struct {
	Text            string   `json:"csv"`
	Lines           []string `json:"-"`
	Source          Source   `json:"source"`
	Fingerprint     string   `json:"fingerprint"`
	Attempts        int      `json:"attempts"`
	ModelUsed       string   `json:"model"`
	IsErrorDocument bool     `json:"is_error_document"`
}
