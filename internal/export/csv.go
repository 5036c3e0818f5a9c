package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"bananaledger/internal/domain"
	"bananaledger/internal/ledger"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a BOM-prefixed ledger file with CRLF line endings. Lines
// are written exactly as validated. Error documents are rejected.
func WriteCSV(out io.Writer, lines []string) error {
	if ledger.IsErrorDocument(lines) {
		return domain.ErrErrorDocument
	}
	if verr := ledger.ValidateLines(lines); verr != nil {
		return verr
	}
	if _, err := out.Write(BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}
	if _, err := io.WriteString(out, strings.Join(lines, "\r\n")+"\r\n"); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a download name derived from the uploaded file name.
// Format: {sanitized_base}_{YYYY-MM-DD}.{ext}, falling back to the source tag.
func BuildFilename(uploadName string, source domain.Source, ext string, now time.Time) string {
	base := strings.TrimSuffix(uploadName, ".pdf")
	base = strings.TrimSuffix(base, ".PDF")
	sanitized := SanitizeFilename(base)
	if sanitized == "" {
		sanitized = SanitizeFilename("banana_" + string(source))
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format("2006-01-02"), ext)
}
