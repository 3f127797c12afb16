package chartifact

import "regexp"

// Precompiled patterns for source normalization.
var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
)

// NormalizeSource prepares a report document read from disk for scanning:
// line endings become \n and runs of blank lines collapse to one blank
// line. This is an explicit pre-step, not part of Convert, so conversion
// itself stays byte-preserving for placeholder-free input.
func NormalizeSource(doc string) string {
	doc = crlfOrCR.ReplaceAllString(doc, "\n")
	return multipleBlankLines.ReplaceAllString(doc, "\n\n")
}
