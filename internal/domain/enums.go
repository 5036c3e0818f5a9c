package domain

import "strings"

// ContentTypePDF is the only media type accepted for statements.
const ContentTypePDF = "application/pdf"

// Source identifies the platform that issued a payout statement.
type Source string

const (
	SourceSmood    Source = "smood"
	SourceUber     Source = "uber"
	SourceSmartbox Source = "smartbox"
	SourceUnknown  Source = "unknown"
)

// KnownSources lists the platforms with dedicated posting rules.
var KnownSources = []Source{SourceSmood, SourceUber, SourceSmartbox}

// NormalizeSource lower-cases and trims a source tag. Blank tags map to SourceUnknown.
func NormalizeSource(raw string) Source {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return SourceUnknown
	}
	return Source(s)
}

// IsKnown reports whether s is one of KnownSources.
func (s Source) IsKnown() bool {
	for _, k := range KnownSources {
		if s == k {
			return true
		}
	}
	return false
}
