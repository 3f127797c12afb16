package chartifact

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CSVExporter is the default TableExporter. It serializes rows to
// comma-separated text with a header row, in the table's field order,
// with RFC 4180 quoting handled by encoding/csv.
type CSVExporter struct{}

// ExportTable serializes the table to CSV text.
func (e *CSVExporter) ExportTable(ctx context.Context, table Table) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	header := make([]string, len(table.Fields))
	for i, f := range table.Fields {
		header[i] = f.Name
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTableExport, err)
	}

	record := make([]string, len(table.Fields))
	for _, row := range table.Rows {
		for i, f := range table.Fields {
			record[i] = formatCell(row[f.Name])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("%w: %v", ErrTableExport, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTableExport, err)
	}
	return b.String(), nil
}

// formatCell renders one row value as CSV text. Integral floats drop the
// decimal point so round-tripped numeric data stays stable.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprint(val)
	}
}
