package chartifact

import (
	"context"
	"encoding/json"
	"fmt"
)

// vegaLiteSchema pins the spec dialect the renderer understands.
const vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v6.json"

// markForChartType maps store chart types to Vega-Lite marks.
// Unknown visual types fall through to their lowercase name.
var markForChartType = map[string]string{
	"bar":       "bar",
	"line":      "line",
	"area":      "area",
	"point":     "point",
	"scatter":   "point",
	"tick":      "tick",
	"rect":      "rect",
	"heatmap":   "rect",
	"boxplot":   "boxplot",
	"histogram": "bar",
}

// VegaLiteAssembler is the default SpecAssembler. It builds a Vega-Lite
// specification from a chart definition's encoding and the fixed rendering
// parameters. Rows are not inlined; the emitter rewrites the data
// reference afterwards.
type VegaLiteAssembler struct{}

// AssembleSpec builds the serialized Vega-Lite spec for one chart.
func (a *VegaLiteAssembler) AssembleSpec(ctx context.Context, chart ChartDefinition, table Table, params RenderParams) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !chart.IsVisual() {
		return nil, fmt.Errorf("chart %q has non-visual type %q", chart.ID, chart.ChartType)
	}

	encoding := make(map[string]any, len(chart.Encoding))
	for channel, ef := range chart.Encoding {
		encoding[channel] = channelSpec(ef, params)
	}

	spec := map[string]any{
		"$schema":  vegaLiteSchema,
		"mark":     markSpec(chart.ChartType),
		"encoding": encoding,
		"width":    params.Width,
		"height":   params.Height,
	}
	if params.Interactive {
		spec["params"] = []any{
			map[string]any{"name": "pan_zoom", "select": "interval", "bind": "scales"},
		}
	}
	if params.ForExport {
		spec["config"] = map[string]any{
			"numberFormat": ",.2f",
			"timeFormat":   "%Y-%m-%d",
		}
	}

	return json.Marshal(spec)
}

// markSpec resolves the mark, keeping tooltips on composite-friendly marks.
func markSpec(chartType string) map[string]any {
	mark, ok := markForChartType[chartType]
	if !ok {
		mark = chartType
	}
	return map[string]any{"type": mark, "tooltip": true}
}

// channelSpec builds one encoding channel entry.
func channelSpec(ef EncodingField, params RenderParams) map[string]any {
	ch := make(map[string]any, 4)
	if ef.Field != "" {
		ch["field"] = ef.Field
	}
	if ef.Type != "" {
		ch["type"] = ef.Type
	} else if ef.Aggregate == "count" {
		ch["type"] = "quantitative"
	}
	if ef.Aggregate != "" {
		ch["aggregate"] = ef.Aggregate
	}
	if ef.Bin {
		ch["bin"] = map[string]any{"maxbins": params.MaxBins}
	}
	if ef.Sort != "" {
		ch["sort"] = ef.Sort
	}
	return ch
}
