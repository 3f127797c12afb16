package chartifact

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// conceptTransform matches the supported derived-field expressions,
// e.g. "year(OrderDate)".
var conceptTransform = regexp.MustCompile(`^(year|month|day|weekday)\((.+)\)$`)

// dateLayouts are tried in order when a derived concept needs a date value.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// ConceptPreprocessor is the default RowPreprocessor. It materializes the
// derived and custom concept-shelf fields a chart's encoding references so
// the assembled spec can address them as plain columns. Original fields
// pass through untouched; the input table is never mutated.
type ConceptPreprocessor struct{}

// PreprocessRows returns a copy of table extended with every derived field
// the chart's encoding needs. An encoded field that neither exists in the
// table nor has a computable concept is an error; the caller treats it as
// a per-chart emission failure.
func (p *ConceptPreprocessor) PreprocessRows(ctx context.Context, chart ChartDefinition, table Table, concepts []FieldItem) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	present := make(map[string]bool, len(table.Fields))
	for _, f := range table.Fields {
		present[f.Name] = true
	}

	var missing []FieldItem
	for _, ef := range chart.Encoding {
		if ef.Field == "" || present[ef.Field] {
			continue
		}
		item, ok := lookupConcept(concepts, ef.Field, table.ID)
		if !ok {
			return Table{}, fmt.Errorf("encoded field %q not in table %q and no concept defines it", ef.Field, table.ID)
		}
		missing = append(missing, item)
		present[item.Name] = true
	}
	if len(missing) == 0 {
		return table, nil
	}

	out := Table{
		ID:     table.ID,
		Fields: append([]Field(nil), table.Fields...),
		Rows:   make([]Row, len(table.Rows)),
	}
	for i, row := range table.Rows {
		copied := make(Row, len(row)+len(missing))
		for k, v := range row {
			copied[k] = v
		}
		out.Rows[i] = copied
	}

	for _, item := range missing {
		if err := applyConcept(out, item); err != nil {
			return Table{}, err
		}
		out.Fields = append(out.Fields, Field{Name: item.Name, Type: conceptFieldType(item)})
	}
	return out, nil
}

// lookupConcept finds the derived or custom concept for a field name,
// preferring one scoped to the chart's table.
func lookupConcept(concepts []FieldItem, name, tableID string) (FieldItem, bool) {
	var fallback *FieldItem
	for i, item := range concepts {
		if item.Name != name || item.Source == "original" {
			continue
		}
		if item.TableRef == tableID {
			return item, true
		}
		if item.TableRef == "" && fallback == nil {
			fallback = &concepts[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return FieldItem{}, false
}

// applyConcept computes one derived column across all rows.
func applyConcept(table Table, item FieldItem) error {
	m := conceptTransform.FindStringSubmatch(strings.TrimSpace(item.Transform))
	if m == nil {
		return fmt.Errorf("concept %q has unsupported transform %q", item.Name, item.Transform)
	}
	fn, arg := m[1], strings.TrimSpace(m[2])

	for i, row := range table.Rows {
		t, err := dateValue(row[arg])
		if err != nil {
			return fmt.Errorf("concept %q row %d: %v", item.Name, i, err)
		}
		switch fn {
		case "year":
			row[item.Name] = t.Year()
		case "month":
			row[item.Name] = int(t.Month())
		case "day":
			row[item.Name] = t.Day()
		case "weekday":
			row[item.Name] = t.Weekday().String()
		}
	}
	return nil
}

// dateValue coerces a row value into a time, trying known layouts.
func dateValue(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("value %q is not a recognized date", val)
	default:
		return time.Time{}, fmt.Errorf("value %v is not a date", v)
	}
}

// conceptFieldType reports the column type a concept produces.
func conceptFieldType(item FieldItem) string {
	if m := conceptTransform.FindStringSubmatch(strings.TrimSpace(item.Transform)); m != nil && m[1] == "weekday" {
		return "string"
	}
	if item.Type != "" {
		return item.Type
	}
	return "integer"
}
