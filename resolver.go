package chartifact

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution errors carried inside diagnostics.
var (
	errChartNotFound = errors.New("no chart definition for id")
	errTableNotFound = errors.New("no table for chart's table reference")
)

// dataNamePrefix namespaces generated data source names so they cannot
// collide with user-authored block labels.
const dataNamePrefix = "chartData_"

// DataNameFor derives the document-local data source name for a chart id:
// the prefix plus the id with every non-alphanumeric byte replaced by '_'.
// Deterministic, so the same id always pairs spec and data block.
func DataNameFor(chartID string) string {
	var b strings.Builder
	b.Grow(len(dataNamePrefix) + len(chartID))
	b.WriteString(dataNamePrefix)
	for i := 0; i < len(chartID); i++ {
		c := chartID[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ResolveChart maps a chart id to its definition and backing table.
//
// A missing definition or table yields a diagnostic; a non-visual chart
// type (table view, never-configured) is skipped without one. Either way
// the placeholder stays in the document untouched.
func ResolveChart(chartID string, charts ChartStore, tables TableStore) (ResolvedChart, *Diagnostic, bool) {
	chart, ok := charts.Chart(chartID)
	if !ok {
		return ResolvedChart{}, &Diagnostic{
			ChartID: chartID,
			Stage:   "resolve",
			Err:     fmt.Errorf("%w: %q", errChartNotFound, chartID),
		}, false
	}

	table, ok := tables.Table(chart.TableRef)
	if !ok {
		return ResolvedChart{}, &Diagnostic{
			ChartID: chartID,
			Stage:   "resolve",
			Err:     fmt.Errorf("%w: %q", errTableNotFound, chart.TableRef),
		}, false
	}

	// Intentional silent skip: these are not visual charts.
	if !chart.IsVisual() {
		return ResolvedChart{}, nil, false
	}

	return ResolvedChart{
		Chart:    chart,
		Table:    table,
		DataName: DataNameFor(chartID),
	}, nil, true
}
