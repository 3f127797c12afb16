// Package store loads the chart, table, and concept workspace backing a
// report. The workspace is a single YAML file owned by external tooling;
// everything here is a read-only view over it.
package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	chartifact "github.com/chartifact-labs/go-chartifact"
)

// MaxWorkspaceSize limits workspace input to prevent memory exhaustion.
const MaxWorkspaceSize = 16 << 20 // 16MB

// Sentinel errors for workspace operations.
var (
	ErrWorkspaceNotFound = errors.New("workspace file not found")
	ErrWorkspaceTooLarge = errors.New("workspace exceeds maximum size")
	ErrWorkspaceParse    = errors.New("failed to parse workspace")
	ErrDuplicateID       = errors.New("duplicate id in workspace")
)

// Workspace is the loaded chart/table/concept set. It implements
// chartifact.ChartStore and chartifact.TableStore.
type Workspace struct {
	charts   map[string]chartifact.ChartDefinition
	tables   map[string]chartifact.Table
	concepts []chartifact.FieldItem
}

// YAML document shape. Kept separate from the library types so the file
// format can evolve without touching them.
type workspaceFile struct {
	Charts   []chartFile   `yaml:"charts"`
	Tables   []tableFile   `yaml:"tables"`
	Concepts []conceptFile `yaml:"concepts"`
}

type chartFile struct {
	ID       string                   `yaml:"id"`
	Type     string                   `yaml:"type"`
	Table    string                   `yaml:"table"`
	Encoding map[string]encodingEntry `yaml:"encoding"`
}

type encodingEntry struct {
	Field     string `yaml:"field"`
	Type      string `yaml:"type"`
	Aggregate string `yaml:"aggregate"`
	Bin       bool   `yaml:"bin"`
	Sort      string `yaml:"sort"`
}

type tableFile struct {
	ID     string           `yaml:"id"`
	Fields []fieldFile      `yaml:"fields"`
	Rows   []map[string]any `yaml:"rows"`
}

type fieldFile struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type conceptFile struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Source    string `yaml:"source"`
	Table     string `yaml:"table"`
	Transform string `yaml:"transform"`
}

// Load reads and validates a workspace file.
func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- workspace path comes from operator flags
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, path)
		}
		return nil, fmt.Errorf("reading workspace: %w", err)
	}
	return Parse(data)
}

// Parse decodes workspace YAML.
func Parse(data []byte) (*Workspace, error) {
	if len(data) > MaxWorkspaceSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrWorkspaceTooLarge, len(data), MaxWorkspaceSize)
	}

	var file workspaceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspaceParse, err)
	}

	ws := &Workspace{
		charts: make(map[string]chartifact.ChartDefinition, len(file.Charts)),
		tables: make(map[string]chartifact.Table, len(file.Tables)),
	}

	for _, c := range file.Charts {
		if _, dup := ws.charts[c.ID]; dup {
			return nil, fmt.Errorf("%w: chart %q", ErrDuplicateID, c.ID)
		}
		ws.charts[c.ID] = toChartDefinition(c)
	}
	for _, t := range file.Tables {
		if _, dup := ws.tables[t.ID]; dup {
			return nil, fmt.Errorf("%w: table %q", ErrDuplicateID, t.ID)
		}
		ws.tables[t.ID] = toTable(t)
	}
	for _, c := range file.Concepts {
		ws.concepts = append(ws.concepts, chartifact.FieldItem{
			Name:      c.Name,
			Type:      c.Type,
			Source:    c.Source,
			TableRef:  c.Table,
			Transform: c.Transform,
		})
	}
	return ws, nil
}

// Chart implements chartifact.ChartStore.
func (w *Workspace) Chart(id string) (chartifact.ChartDefinition, bool) {
	c, ok := w.charts[id]
	return c, ok
}

// Table implements chartifact.TableStore.
func (w *Workspace) Table(id string) (chartifact.Table, bool) {
	t, ok := w.tables[id]
	return t, ok
}

// Concepts returns the concept-shelf field items.
func (w *Workspace) Concepts() []chartifact.FieldItem {
	return w.concepts
}

// ChartCount and TableCount support diagnostics output.
func (w *Workspace) ChartCount() int { return len(w.charts) }
func (w *Workspace) TableCount() int { return len(w.tables) }

func toChartDefinition(c chartFile) chartifact.ChartDefinition {
	encoding := make(chartifact.Encoding, len(c.Encoding))
	for channel, e := range c.Encoding {
		encoding[channel] = chartifact.EncodingField{
			Field:     e.Field,
			Type:      e.Type,
			Aggregate: e.Aggregate,
			Bin:       e.Bin,
			Sort:      e.Sort,
		}
	}
	return chartifact.ChartDefinition{
		ID:        c.ID,
		ChartType: c.Type,
		Encoding:  encoding,
		TableRef:  c.Table,
	}
}

func toTable(t tableFile) chartifact.Table {
	fields := make([]chartifact.Field, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = chartifact.Field{Name: f.Name, Type: f.Type}
	}
	rows := make([]chartifact.Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = chartifact.Row(r)
	}
	return chartifact.Table{ID: t.ID, Fields: fields, Rows: rows}
}
