package chartifact

import (
	"iter"
	"regexp"
)

// placeholderPattern matches chart-reference tokens of the form
// [IMAGE(<chartId>)]. The id is the exact text between the parentheses,
// non-greedy so scanning stops at the first ")]".
var placeholderPattern = regexp.MustCompile(`\[IMAGE\((.*?)\)\]`)

// Placeholder is one chart-reference token found in a source document.
type Placeholder struct {
	Token   string // the exact matched substring, e.g. "[IMAGE(c1)]"
	ChartID string // the text between the parentheses
}

// ScanPlaceholders returns the placeholders of doc in left-to-right order,
// non-overlapping. The sequence is a pure function of doc: re-ranging it
// restarts the scan from the beginning.
func ScanPlaceholders(doc string) iter.Seq[Placeholder] {
	return func(yield func(Placeholder) bool) {
		offset := 0
		for offset <= len(doc) {
			loc := placeholderPattern.FindStringSubmatchIndex(doc[offset:])
			if loc == nil {
				return
			}
			p := Placeholder{
				Token:   doc[offset+loc[0] : offset+loc[1]],
				ChartID: doc[offset+loc[2] : offset+loc[3]],
			}
			if !yield(p) {
				return
			}
			offset += loc[1]
		}
	}
}
