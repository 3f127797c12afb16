package chartifact

import (
	"context"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func newTestConverter(t *testing.T, opts ...ConverterOption) *Converter {
	t.Helper()
	stores := testStores()
	conv, err := NewConverter(stores, stores, opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	return conv
}

func TestConvertNoPlaceholders(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)

	tests := []string{
		"",
		"# Report\n\nNothing to chart here.",
		"fenced ``` block ``` and [link](x)",
	}
	for _, doc := range tests {
		out, diags, err := conv.Convert(context.Background(), doc)
		if err != nil {
			t.Fatalf("Convert(%q) error = %v", doc, err)
		}
		if out != doc {
			t.Errorf("Convert(%q) = %q, want input unchanged", doc, out)
		}
		if len(diags) != 0 {
			t.Errorf("Convert(%q) diagnostics = %v, want none", doc, diags)
		}
	}
}

func TestConvertResolvedChart(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	out, diags, err := conv.Convert(context.Background(), "See [IMAGE(c1)] here.")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v, want none", diags)
	}

	if !strings.HasPrefix(out, "See ") {
		t.Errorf("output lost literal prefix:\n%s", out)
	}
	if !strings.Contains(out, " here.") {
		t.Errorf("output lost literal suffix:\n%s", out)
	}
	if strings.Contains(out, "[IMAGE(c1)]") {
		t.Errorf("placeholder survived conversion:\n%s", out)
	}
	if n := strings.Count(out, "```json vega-lite"); n != 1 {
		t.Errorf("spec blocks = %d, want 1", n)
	}
	if n := strings.Count(out, "```csv chartData_c1"); n != 1 {
		t.Errorf("data blocks = %d, want 1", n)
	}

	// The spec block must reference the document-local data source.
	specStart := strings.Index(out, "```json vega-lite\n") + len("```json vega-lite\n")
	specEnd := strings.Index(out[specStart:], "\n```")
	spec := out[specStart : specStart+specEnd]
	if name := gjson.Get(spec, "data.name").String(); name != "chartData_c1" {
		t.Errorf("data.name = %q, want chartData_c1", name)
	}

	// Data block: header plus two rows.
	dataStart := strings.Index(out, "```csv chartData_c1\n") + len("```csv chartData_c1\n")
	dataEnd := strings.Index(out[dataStart:], "```")
	data := strings.TrimRight(out[dataStart:dataStart+dataEnd], "\n")
	lines := strings.Split(data, "\n")
	if len(lines) != 3 {
		t.Errorf("csv lines = %d, want header plus 2 rows:\n%s", len(lines), data)
	}
	if lines[0] != "category,price" {
		t.Errorf("csv header = %q, want category,price", lines[0])
	}
}

func TestConvertUnresolvedPlaceholders(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)

	tests := []struct {
		name      string
		doc       string
		token     string
		wantDiags int
	}{
		{name: "missing chart", doc: "a [IMAGE(nope)] b", token: "[IMAGE(nope)]", wantDiags: 1},
		{name: "missing table", doc: "a [IMAGE(orphan)] b", token: "[IMAGE(orphan)]", wantDiags: 1},
		{name: "table view", doc: "a [IMAGE(tableview)] b", token: "[IMAGE(tableview)]"},
		{name: "unknown type", doc: "a [IMAGE(unset)] b", token: "[IMAGE(unset)]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, diags, err := conv.Convert(context.Background(), tt.doc)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if out != tt.doc {
				t.Errorf("unresolved document changed:\n%s", out)
			}
			if !strings.Contains(out, tt.token) {
				t.Errorf("token %q not preserved verbatim", tt.token)
			}
			if len(diags) != tt.wantDiags {
				t.Errorf("diagnostics = %d, want %d", len(diags), tt.wantDiags)
			}
		})
	}
}

func TestConvertMixedResolution(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	doc := "[IMAGE(c1)] and [IMAGE(nope)]"
	out, diags, err := conv.Convert(context.Background(), doc)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// One bad reference must not abort conversion of the rest.
	if strings.Contains(out, "[IMAGE(c1)]") {
		t.Error("resolved placeholder not replaced")
	}
	if !strings.Contains(out, "[IMAGE(nope)]") {
		t.Error("unresolved placeholder not preserved")
	}
	if len(diags) != 1 {
		t.Errorf("diagnostics = %v, want exactly one", diags)
	}
}

func TestConvertIdempotent(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	doc := "# Sales\n\n[IMAGE(c1)]\n\nand [IMAGE(nope)]"

	first, _, err := conv.Convert(context.Background(), doc)
	if err != nil {
		t.Fatalf("first Convert() error = %v", err)
	}
	second, _, err := conv.Convert(context.Background(), doc)
	if err != nil {
		t.Fatalf("second Convert() error = %v", err)
	}

	if first != second {
		t.Error("conversion is not byte-identical across passes")
	}
}

func TestConvertRepeatedReference(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	out, _, err := conv.Convert(context.Background(), "[IMAGE(c1)] then [IMAGE(c1)]")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if strings.Contains(out, "[IMAGE(c1)]") {
		t.Errorf("repeated references left a literal token:\n%s", out)
	}
	if n := strings.Count(out, "```json vega-lite"); n != 2 {
		t.Errorf("spec blocks = %d, want 2", n)
	}
	if n := strings.Count(out, "```csv chartData_c1"); n != 1 {
		t.Errorf("data blocks = %d, want 1", n)
	}
}

func TestConvertEmissionFailureLeavesToken(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithSpecAssembler(&fakeAssembler{err: context.DeadlineExceeded}))
	doc := "x [IMAGE(c1)] y"
	out, diags, err := conv.Convert(context.Background(), doc)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != doc {
		t.Errorf("failed emission altered document:\n%s", out)
	}
	if len(diags) != 1 || diags[0].Stage != "emit" {
		t.Errorf("diagnostics = %v, want one emit diagnostic", diags)
	}
}

func TestConvertCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv := newTestConverter(t)
	if _, _, err := conv.Convert(ctx, "[IMAGE(c1)]"); err == nil {
		t.Error("Convert() with cancelled context returned nil error")
	}
}

func TestNewConverterRejectsBadParams(t *testing.T) {
	t.Parallel()

	stores := testStores()
	if _, err := NewConverter(stores, stores, WithRenderParams(RenderParams{MaxBins: 0, Width: 10, Height: 10})); err == nil {
		t.Error("NewConverter accepted invalid bin count")
	}
	if _, err := NewConverter(stores, stores, WithRenderParams(RenderParams{MaxBins: 10, Width: 0, Height: 10})); err == nil {
		t.Error("NewConverter accepted invalid chart size")
	}
}
