package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Row is one typed ledger entry. Date is zero when DateText has the right
// shape but names no calendar day, e.g. 2024-02-30.
type Row struct {
	Date          time.Time
	DateText      string
	Invoice       string
	Description   string
	DebitAccount  string
	CreditAccount string
	Amount        decimal.Decimal
	Currency      string
	VATCode       string
}

// Document is a parsed ledger: either rows or a single error message.
type Document struct {
	Rows         []Row
	ErrorMessage string
}

// IsError reports whether the document is the model's error form.
func (d *Document) IsError() bool {
	return d.ErrorMessage != ""
}

// Parse validates lines and converts them into a Document.
func Parse(lines []string) (*Document, error) {
	if verr := ValidateLines(lines); verr != nil {
		return nil, verr
	}

	if IsErrorDocument(lines) {
		msg := strings.TrimPrefix(lines[0], ErrorMarker)
		msg = strings.TrimPrefix(msg, ErrorMarkerEN)
		msg = strings.TrimSpace(msg)
		if msg == "" {
			msg = "unspecified error"
		}
		return &Document{ErrorMessage: msg}, nil
	}

	doc := &Document{Rows: make([]Row, 0, len(lines)-1)}
	for i, ln := range lines[1:] {
		row, err := ParseRow(ln)
		if err != nil {
			return nil, lineError(i+2, "%v", err)
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc, nil
}

// ParseRow converts a single data line into a Row. It only checks what is
// needed for the conversion; use ValidateLines for the full grammar.
// Impossible calendar dates are kept as text.
func ParseRow(line string) (Row, error) {
	fields := strings.Split(line, separator)
	if len(fields) != FieldCount {
		return Row{}, fmt.Errorf("wrong number of columns (%d), expected %d", len(fields), FieldCount)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	date, _ := time.Parse(dateLayout, fields[colDate])

	amount, err := ParseAmount(fields[colAmount])
	if err != nil {
		return Row{}, err
	}

	return Row{
		Date:          date,
		DateText:      fields[colDate],
		Invoice:       fields[colInvoice],
		Description:   fields[colDescription],
		DebitAccount:  fields[colDebit],
		CreditAccount: fields[colCredit],
		Amount:        amount,
		Currency:      fields[colCurrency],
		VATCode:       fields[colVATCode],
	}, nil
}

// ParseAmount reads an amount such as 1234.56 or 1'234.56.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, "'", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount '%s': %w", raw, err)
	}
	return d, nil
}
