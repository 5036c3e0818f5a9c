package ledger

import (
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```(?:csv)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// SplitLines trims every line of text and drops the blank ones.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

// Normalize strips a Markdown code fence around model output and returns its
// non-blank trimmed lines.
func Normalize(text string) []string {
	text = strings.TrimSpace(text)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return SplitLines(text)
}

// IsErrorDocument reports whether lines form the single-line error document.
func IsErrorDocument(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	return strings.HasPrefix(lines[0], ErrorMarker) || strings.HasPrefix(lines[0], ErrorMarkerEN)
}
