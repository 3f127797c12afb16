package chartifact

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RowPreprocessor prepares table rows for spec assembly, applying the
// aggregations and derived fields the chart's encoding expects. Opaque to
// the emitter; a failure is a per-chart emission failure, not fatal to the
// batch.
type RowPreprocessor interface {
	PreprocessRows(ctx context.Context, chart ChartDefinition, table Table, concepts []FieldItem) (Table, error)
}

// SpecAssembler builds a renderable chart specification from a chart
// definition and its processed rows. The returned bytes are opaque JSON;
// the emitter only rewrites their data reference.
type SpecAssembler interface {
	AssembleSpec(ctx context.Context, chart ChartDefinition, table Table, params RenderParams) ([]byte, error)
}

// TableExporter serializes table rows to delimited text.
type TableExporter interface {
	ExportTable(ctx context.Context, table Table) (string, error)
}

// Emitter turns resolved charts into embeddable spec and data blocks.
type Emitter struct {
	preprocessor RowPreprocessor
	assembler    SpecAssembler
	exporter     TableExporter
	params       RenderParams
}

// NewEmitter creates an Emitter around the three backing services.
func NewEmitter(pre RowPreprocessor, asm SpecAssembler, exp TableExporter, params RenderParams) *Emitter {
	return &Emitter{
		preprocessor: pre,
		assembler:    asm,
		exporter:     exp,
		params:       params,
	}
}

// Emit produces the spec and data block for one resolved chart.
//
// The assembled spec's data reference is rewritten to the chart's
// document-local data source name, decoupling it from any external data
// URI so it pairs deterministically with the emitted data block.
func (e *Emitter) Emit(ctx context.Context, rc ResolvedChart, concepts []FieldItem) (EmittedBlock, error) {
	if err := ctx.Err(); err != nil {
		return EmittedBlock{}, err
	}

	processed, err := e.preprocessor.PreprocessRows(ctx, rc.Chart, rc.Table, concepts)
	if err != nil {
		return EmittedBlock{}, fmt.Errorf("%w: %v", ErrRowPreprocess, err)
	}

	spec, err := e.assembler.AssembleSpec(ctx, rc.Chart, processed, e.params)
	if err != nil {
		return EmittedBlock{}, fmt.Errorf("%w: %v", ErrSpecAssembly, err)
	}

	spec, err = rewriteDataReference(spec, rc.DataName)
	if err != nil {
		return EmittedBlock{}, err
	}

	dataText, err := e.exporter.ExportTable(ctx, processed)
	if err != nil {
		return EmittedBlock{}, fmt.Errorf("%w: %v", ErrTableExport, err)
	}

	return EmittedBlock{
		SpecText: string(spec),
		DataName: rc.DataName,
		DataText: dataText,
	}, nil
}

// rewriteDataReference replaces the spec's data field with a named data
// source, regardless of what the assembler put there (inline values, a
// URL, or nothing at all).
func rewriteDataReference(spec []byte, dataName string) ([]byte, error) {
	if !gjson.ValidBytes(spec) {
		return nil, fmt.Errorf("%w: assembler returned invalid JSON", ErrSpecRewrite)
	}
	out, err := sjson.SetBytes(spec, "data", map[string]any{"name": dataName})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpecRewrite, err)
	}
	return out, nil
}
