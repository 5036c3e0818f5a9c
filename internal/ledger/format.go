// Package ledger implements the Banana Accounting import grammar: a header
// line followed by semicolon-delimited rows, or a single error line.
package ledger

import "regexp"

const (
	// Header is the exact first line of every ledger document.
	Header = "Data;Fattura;Descrizione;CtDare;CtAvere;Importo;Moneta;Cod. IVA"

	// Currency is the only accepted value in the Moneta column.
	Currency = "CHF"

	// FieldCount is the number of columns in every row.
	FieldCount = 8

	// ErrorMarker starts the single-line document the model returns when it
	// cannot transcribe a statement. ErrorMarkerEN is accepted as well.
	ErrorMarker   = "# ERRORE:"
	ErrorMarkerEN = "# ERROR:"

	commentPrefix = "#"
	separator     = ";"
)

// Column positions within a row.
const (
	colDate = iota
	colInvoice
	colDescription
	colDebit
	colCredit
	colAmount
	colCurrency
	colVATCode
)

// VATCodes is the closed set of accepted Cod. IVA values.
var VATCodes = map[string]bool{
	"F1":  true,
	"F2":  true,
	"V0":  true,
	"8.1": true,
	"2.6": true,
}

var (
	accountPattern = regexp.MustCompile(`^\d{4,10}$`)
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	amountPattern  = regexp.MustCompile(`^[0-9]{1,3}(?:'[0-9]{3})*\.[0-9]{2}$|^[0-9]+\.[0-9]{2}$`)
)
