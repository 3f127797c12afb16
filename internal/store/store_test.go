package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleWorkspace = `
charts:
  - id: c1
    type: bar
    table: t1
    encoding:
      x:
        field: category
        type: nominal
      y:
        field: price
        type: quantitative
        aggregate: sum
  - id: hist
    type: histogram
    table: t1
    encoding:
      x:
        field: price
        bin: true
tables:
  - id: t1
    fields:
      - name: category
        type: string
      - name: price
        type: number
    rows:
      - category: a
        price: 1.5
      - category: b
        price: 2
concepts:
  - name: order_year
    source: derived
    table: t1
    transform: year(OrderDate)
`

func TestParseWorkspace(t *testing.T) {
	t.Parallel()

	ws, err := Parse([]byte(sampleWorkspace))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if ws.ChartCount() != 2 || ws.TableCount() != 1 {
		t.Errorf("counts = %d charts %d tables, want 2 and 1", ws.ChartCount(), ws.TableCount())
	}

	chart, ok := ws.Chart("c1")
	if !ok {
		t.Fatal("chart c1 not found")
	}
	if chart.ChartType != "bar" || chart.TableRef != "t1" {
		t.Errorf("chart c1 = %+v", chart)
	}
	if y := chart.Encoding["y"]; y.Field != "price" || y.Aggregate != "sum" {
		t.Errorf("chart c1 y channel = %+v", y)
	}

	hist, _ := ws.Chart("hist")
	if !hist.Encoding["x"].Bin {
		t.Error("hist x channel lost bin flag")
	}

	table, ok := ws.Table("t1")
	if !ok {
		t.Fatal("table t1 not found")
	}
	if len(table.Fields) != 2 || table.Fields[0].Name != "category" {
		t.Errorf("table fields = %+v", table.Fields)
	}
	if len(table.Rows) != 2 || table.Rows[0]["category"] != "a" {
		t.Errorf("table rows = %+v", table.Rows)
	}

	concepts := ws.Concepts()
	if len(concepts) != 1 || concepts[0].TableRef != "t1" || concepts[0].Transform != "year(OrderDate)" {
		t.Errorf("concepts = %+v", concepts)
	}
}

func TestParseWorkspaceMissingLookups(t *testing.T) {
	t.Parallel()

	ws, err := Parse([]byte(sampleWorkspace))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := ws.Chart("ghost"); ok {
		t.Error("lookup of absent chart succeeded")
	}
	if _, ok := ws.Table("ghost"); ok {
		t.Error("lookup of absent table succeeded")
	}
}

func TestParseWorkspaceEmpty(t *testing.T) {
	t.Parallel()

	ws, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse(empty) error = %v", err)
	}
	if ws.ChartCount() != 0 || ws.TableCount() != 0 || len(ws.Concepts()) != 0 {
		t.Error("empty workspace is not empty")
	}
}

func TestParseWorkspaceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want error
	}{
		{
			name: "duplicate chart id",
			data: "charts:\n  - id: c1\n    type: bar\n  - id: c1\n    type: line\n",
			want: ErrDuplicateID,
		},
		{
			name: "duplicate table id",
			data: "tables:\n  - id: t1\n  - id: t1\n",
			want: ErrDuplicateID,
		},
		{
			name: "malformed yaml",
			data: "charts: [unclosed\n",
			want: ErrWorkspaceParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Parse([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseWorkspaceTooLarge(t *testing.T) {
	t.Parallel()

	data := strings.Repeat("#", MaxWorkspaceSize+1)
	if _, err := Parse([]byte(data)); !errors.Is(err, ErrWorkspaceTooLarge) {
		t.Errorf("Parse() error = %v, want ErrWorkspaceTooLarge", err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "workspace.yaml")
	if err := os.WriteFile(path, []byte(sampleWorkspace), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	ws, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ws.ChartCount() != 2 {
		t.Errorf("ChartCount() = %d, want 2", ws.ChartCount())
	}
}

func TestLoadNotFound(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := Load(path); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Errorf("Load() error = %v, want ErrWorkspaceNotFound", err)
	}
}
