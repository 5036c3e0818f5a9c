package ledger

import (
	"fmt"
	"strings"
)

// ValidationError describes the first grammar violation found in a document.
// Line is 1-based over the non-blank lines (the header is line 1) and is zero
// when the header itself is missing or wrong.
type ValidationError struct {
	Line   int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line == 0 {
		return e.Reason
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func lineError(line int, format string, args ...any) *ValidationError {
	return &ValidationError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks text against the ledger grammar. It returns nil for a valid
// ledger or error document, and a *ValidationError otherwise.
func Validate(text string) error {
	if verr := ValidateLines(SplitLines(text)); verr != nil {
		return verr
	}
	return nil
}

// ValidateLines checks already split lines. Unlike Validate it returns the
// concrete type so callers can read the line number without a type assertion.
func ValidateLines(lines []string) *ValidationError {
	if IsErrorDocument(lines) {
		return nil
	}

	if len(lines) == 0 || lines[0] != Header {
		return &ValidationError{Reason: fmt.Sprintf("missing or invalid header, expected: %s", Header)}
	}

	for i, ln := range lines[1:] {
		lineNo := i + 2

		if strings.HasPrefix(ln, commentPrefix) {
			return lineError(lineNo, "comments are not allowed in the ledger (only a single leading %s line)", ErrorMarker)
		}

		fields := strings.Split(ln, separator)
		if len(fields) != FieldCount {
			return lineError(lineNo, "wrong number of columns (%d), expected %d", len(fields), FieldCount)
		}
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}

		if verr := validateRow(lineNo, fields); verr != nil {
			return verr
		}
	}

	return nil
}

func validateRow(lineNo int, f []string) *ValidationError {
	if !datePattern.MatchString(f[colDate]) {
		return lineError(lineNo, "invalid date '%s' (expected YYYY-MM-DD)", f[colDate])
	}

	if f[colDescription] == "" {
		return lineError(lineNo, "empty description")
	}

	if !accountPattern.MatchString(f[colDebit]) || !accountPattern.MatchString(f[colCredit]) {
		return lineError(lineNo, "CtDare/CtAvere must be account numbers, found CtDare='%s' CtAvere='%s'",
			f[colDebit], f[colCredit])
	}

	if f[colCurrency] != Currency {
		return lineError(lineNo, "currency must be %s, found '%s'", Currency, f[colCurrency])
	}

	amount := f[colAmount]
	if strings.HasPrefix(amount, "-") {
		return lineError(lineNo, "amount must be positive (found %s)", amount)
	}
	if !amountPattern.MatchString(amount) {
		return lineError(lineNo, "invalid amount format '%s', use 1234.56 or 1'234.56", amount)
	}

	if code := f[colVATCode]; code != "" && !VATCodes[code] {
		return lineError(lineNo, "VAT code not allowed '%s'", code)
	}

	return nil
}
