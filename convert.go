package chartifact

import "context"

// Compile-time interface implementation checks.
var (
	_ RowPreprocessor = (*ConceptPreprocessor)(nil)
	_ SpecAssembler   = (*VegaLiteAssembler)(nil)
	_ TableExporter   = (*CSVExporter)(nil)
)

// Converter runs the document transformation pipeline: scan placeholders,
// resolve charts, emit spec and data blocks, assemble the chartifact
// document. Pure with respect to its stores: the same input yields
// byte-identical output on every pass.
type Converter struct {
	charts   ChartStore
	tables   TableStore
	concepts []FieldItem
	emitter  *Emitter
}

// ConverterOption configures a Converter.
type ConverterOption func(*converterConfig)

type converterConfig struct {
	params       RenderParams
	concepts     []FieldItem
	preprocessor RowPreprocessor
	assembler    SpecAssembler
	exporter     TableExporter
}

// WithRenderParams overrides the default rendering parameters.
func WithRenderParams(p RenderParams) ConverterOption {
	return func(c *converterConfig) { c.params = p }
}

// WithConcepts supplies the concept-shelf field items used during row
// preprocessing.
func WithConcepts(items []FieldItem) ConverterOption {
	return func(c *converterConfig) { c.concepts = items }
}

// WithRowPreprocessor replaces the default row preprocessing service.
func WithRowPreprocessor(p RowPreprocessor) ConverterOption {
	return func(c *converterConfig) { c.preprocessor = p }
}

// WithSpecAssembler replaces the default spec assembly service.
func WithSpecAssembler(a SpecAssembler) ConverterOption {
	return func(c *converterConfig) { c.assembler = a }
}

// WithTableExporter replaces the default table export service.
func WithTableExporter(e TableExporter) ConverterOption {
	return func(c *converterConfig) { c.exporter = e }
}

// NewConverter creates a Converter over the given chart and table stores.
func NewConverter(charts ChartStore, tables TableStore, opts ...ConverterOption) (*Converter, error) {
	cfg := converterConfig{
		params:       DefaultRenderParams(),
		preprocessor: &ConceptPreprocessor{},
		assembler:    &VegaLiteAssembler{},
		exporter:     &CSVExporter{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.params.Validate(); err != nil {
		return nil, err
	}
	return &Converter{
		charts:   charts,
		tables:   tables,
		concepts: cfg.concepts,
		emitter:  NewEmitter(cfg.preprocessor, cfg.assembler, cfg.exporter, cfg.params),
	}, nil
}

// Convert transforms a report document into a chartifact document.
//
// Every placeholder whose chart resolves gets its token replaced by a spec
// block and a data block appended; unresolved placeholders stay verbatim.
// Per-chart failures become diagnostics and never abort the batch; the
// only returned error is context cancellation.
func (c *Converter) Convert(ctx context.Context, doc string) (string, []Diagnostic, error) {
	var (
		blocks []EmittedBlock
		diags  []Diagnostic
	)

	// One emission per chart id; repeated references reuse the cached
	// block. A nil cache entry marks an id already known to fail or skip.
	cache := make(map[string]*EmittedBlock)

	for p := range ScanPlaceholders(doc) {
		if err := ctx.Err(); err != nil {
			return "", diags, err
		}

		if cached, seen := cache[p.ChartID]; seen {
			if cached != nil {
				b := *cached
				b.Token = p.Token
				blocks = append(blocks, b)
			}
			continue
		}

		rc, diag, ok := ResolveChart(p.ChartID, c.charts, c.tables)
		if diag != nil {
			diags = append(diags, *diag)
		}
		if !ok {
			cache[p.ChartID] = nil
			continue
		}

		b, err := c.emitter.Emit(ctx, rc, c.concepts)
		if err != nil {
			if ctx.Err() != nil {
				return "", diags, ctx.Err()
			}
			diags = append(diags, Diagnostic{ChartID: p.ChartID, Stage: "emit", Err: err})
			cache[p.ChartID] = nil
			continue
		}

		b.Token = p.Token
		cache[p.ChartID] = &b
		blocks = append(blocks, b)
	}

	return AssembleDocument(doc, blocks), diags, nil
}
