package chartifact

import (
	"fmt"
	"time"
)

// Chart type constants. The store may carry other visual types (bar, line,
// point, area, ...); only these two are special-cased by the resolver.
const (
	// ChartTypeTable marks a tabular view with no visual encoding.
	ChartTypeTable = "Table"
	// ChartTypeUnknown is the sentinel for charts whose type was never chosen.
	ChartTypeUnknown = "?"
)

// EncodingField maps a data field onto one visual channel.
type EncodingField struct {
	Field     string // column name in the backing table
	Type      string // "quantitative", "nominal", "ordinal", "temporal"
	Aggregate string // "", "sum", "mean", "count", "min", "max"
	Bin       bool   // bucket a quantitative field
	Sort      string // "", "ascending", "descending"
}

// Encoding maps visual channels ("x", "y", "color", "size", "column", "row",
// "opacity") to field assignments. Empty channels are simply absent.
type Encoding map[string]EncodingField

// ChartDefinition describes one chart owned by an external chart store.
// Read-only here.
type ChartDefinition struct {
	ID        string
	ChartType string
	Encoding  Encoding
	TableRef  string
}

// IsVisual reports whether the chart type produces a renderable spec.
// Table views and never-configured charts do not.
func (c ChartDefinition) IsVisual() bool {
	return c.ChartType != ChartTypeTable && c.ChartType != ChartTypeUnknown && c.ChartType != ""
}

// Field carries per-column type information for a table.
type Field struct {
	Name string
	Type string // "string", "number", "integer", "boolean", "date"
}

// Row is one record of a table, keyed by field name.
type Row map[string]any

// Table is an ordered set of rows plus field metadata. Read-only here.
// Field order defines column order for any serialized output.
type Table struct {
	ID     string
	Fields []Field
	Rows   []Row
}

// FieldItem is a concept-shelf entry describing an original, derived, or
// custom field used during row preprocessing. Read-only here.
type FieldItem struct {
	Name      string
	Type      string
	Source    string // "original", "derived", "custom"
	TableRef  string
	Transform string // expression for derived/custom fields, empty otherwise
}

// ResolvedChart pairs a visual chart definition with its backing table.
// Produced by the resolver only when both exist and the type is visual.
type ResolvedChart struct {
	Chart    ChartDefinition
	Table    Table
	DataName string
}

// EmittedBlock is the per-chart output of the emitter: the exact source
// token it replaces, the serialized spec referencing DataName, and the
// serialized table rows. Discarded after assembly.
type EmittedBlock struct {
	Token    string
	SpecText string
	DataName string
	DataText string
}

// Diagnostic records a per-chart resolution or emission failure.
// Diagnostics are collected, never thrown; one bad reference must not
// abort conversion of the rest of the document.
type Diagnostic struct {
	ChartID string
	Stage   string // "resolve" or "emit"
	Err     error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("chart %q: %s: %v", d.ChartID, d.Stage, d.Err)
}

// ChartStore looks up chart definitions by id.
type ChartStore interface {
	Chart(id string) (ChartDefinition, bool)
}

// TableStore looks up tables by id.
type TableStore interface {
	Table(id string) (Table, bool)
}

// Rendering parameter bounds.
const (
	MinBinCount      = 1
	MaxBinCount      = 1000
	DefaultBinCount  = 10
	DefaultChartSide = 300
)

// RenderParams are the fixed rendering parameters applied to every
// assembled spec in a conversion pass.
type RenderParams struct {
	MaxBins     int  // binning granularity for binned quantitative fields
	Interactive bool // attach interactive selection params to the spec
	Width       int  // default chart width in pixels
	Height      int  // default chart height in pixels
	ForExport   bool // enable export-oriented number/date formatting
}

// DefaultRenderParams returns the parameters used when none are supplied.
func DefaultRenderParams() RenderParams {
	return RenderParams{
		MaxBins:     DefaultBinCount,
		Interactive: true,
		Width:       DefaultChartSide,
		Height:      DefaultChartSide,
	}
}

// Validate checks rendering parameter bounds.
func (p RenderParams) Validate() error {
	if p.MaxBins < MinBinCount || p.MaxBins > MaxBinCount {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidBinCount, p.MaxBins, MinBinCount, MaxBinCount)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidChartSize, p.Width, p.Height)
	}
	return nil
}

// defaultTimeout bounds sandbox runtime operations when no timeout is set.
const defaultTimeout = 30 * time.Second
