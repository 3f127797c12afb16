// Package chartifact converts report markdown with embedded chart
// placeholders into self-contained chartifact documents and previews them
// inside an isolated renderer sandbox.
//
// # Quick Start
//
// Create a converter over your chart and table stores, then convert:
//
//	conv, err := chartifact.NewConverter(charts, tables)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, diags, err := conv.Convert(ctx, "See [IMAGE(c1)] here.")
//	for _, d := range diags {
//	    log.Println(d)
//	}
//
// Each resolved [IMAGE(<id>)] token becomes a fenced "json vega-lite" spec
// block, with a matching "csv chartData_<id>" data block appended after
// the document body. Unresolved placeholders are left verbatim; per-chart
// failures surface as diagnostics and never abort the batch.
//
// # Conversion Pipeline
//
//  1. Placeholder scanning (left-to-right, non-overlapping)
//  2. Chart resolution against the chart and table stores
//  3. Spec emission: row preprocessing, Vega-Lite assembly, data
//     reference rewrite, CSV export
//  4. Document assembly (in-place spec blocks, appended data blocks)
//
// # Live Preview
//
// The sandbox lifecycle manager owns the externally built renderer
// runtime loaded into a headless Chromium page (go-rod). A Preview ties
// the converter to the manager: document-open and document-change events
// convert and feed the result into the live sandbox, recreating the
// instance only when its execution boundary has been silently killed by
// the host.
//
//	runtime := chartifact.NewRodRuntime(sandboxJS, hostJS, 30*time.Second)
//	manager := chartifact.NewLifecycleManager(runtime, chartifact.DefaultMountID)
//	preview := chartifact.NewPreview(conv, manager)
//	defer preview.Close()
//
//	diags, err := preview.Open(ctx, report)
//
// # Batch Snapshots
//
// For rendering many reports to PNG in parallel, use RendererPool; each
// worker owns its own browser instance.
package chartifact
