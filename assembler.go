package chartifact

import "strings"

// Fence tags understood by the chartifact renderer.
const (
	specFenceTag = "json vega-lite"
	dataFenceTag = "csv"
)

// specFence wraps serialized spec text in its fenced code block.
func specFence(specText string) string {
	return "```" + specFenceTag + "\n" + ensureTrailingNewline(specText) + "```"
}

// dataFence wraps serialized row data in a fenced block labeled with its
// data source name.
func dataFence(dataName, dataText string) string {
	return "```" + dataFenceTag + " " + dataName + "\n" + ensureTrailingNewline(dataText) + "```"
}

// AssembleDocument combines the source document with the emitted blocks.
//
// Each block's original token is replaced in place by its fenced spec
// block; replacement is literal and first-match, so a chart referenced N
// times consumes one emitted block per reference. All data blocks are then
// appended after the document body in emission order, blank-line
// separated, one per distinct data source name (repeated references share
// a backing block). Tokens with no emitted block are left verbatim.
func AssembleDocument(doc string, blocks []EmittedBlock) string {
	out := doc
	for _, b := range blocks {
		out = strings.Replace(out, b.Token, specFence(b.SpecText), 1)
	}
	appended := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		if appended[b.DataName] {
			continue
		}
		appended[b.DataName] = true
		out += "\n\n" + dataFence(b.DataName, b.DataText)
	}
	return out
}

func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
