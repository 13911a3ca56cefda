package core

// jsonview.go derives JSON projections from catalogue CSVs.
//
// Locked principles:
//   - CSV is authoritative. JSON is derived and regenerable.
//   - View format is { "meta": {...}, "records": [...] }.
//   - Spreadsheet artefact columns ("Unnamed:" prefix) are dropped.
//   - Fully empty columns are dropped.
//
// Views live next to the CSVs in a json/ subdirectory and are refreshed
// when the CSV's mtime is newer.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ViewMeta describes how and when a JSON view was generated.
type ViewMeta struct {
	Catalogue         string   `json:"catalogue"`
	GeneratedAtUTC    string   `json:"generated_at_utc"`
	SourceCSV         string   `json:"source_csv"`
	SourceCSVMtimeUTC string   `json:"source_csv_mtime_utc"`
	RowCount          int      `json:"row_count"`
	Columns           []string `json:"columns"`
	Notes             string   `json:"notes,omitempty"`
}

// View is one catalogue rendered as a JSON projection.
type View struct {
	Meta    ViewMeta `json:"meta"`
	Records []Entity `json:"records"`
}

// ViewBuilder derives and refreshes JSON views for a catalogue directory.
type ViewBuilder struct {
	dir string // directory holding the catalogue CSVs
}

// NewViewBuilder creates a builder over the given catalogue directory.
func NewViewBuilder(dir string) *ViewBuilder {
	return &ViewBuilder{dir: dir}
}

func (b *ViewBuilder) csvPath(name string) string {
	return filepath.Join(b.dir, name+".csv")
}

func (b *ViewBuilder) jsonDir() string {
	return filepath.Join(b.dir, "json")
}

// ViewPath returns where the JSON view for a catalogue is written.
func (b *ViewBuilder) ViewPath(name string) string {
	return filepath.Join(b.jsonDir(), name+".json")
}

// IsStale reports whether the view needs regeneration: missing, or older
// than its source CSV.
func (b *ViewBuilder) IsStale(name string) bool {
	csvInfo, err := os.Stat(b.csvPath(name))
	if err != nil {
		return false
	}

	jsonInfo, err := os.Stat(b.ViewPath(name))
	if err != nil {
		return true
	}

	return jsonInfo.ModTime().Before(csvInfo.ModTime())
}

// Ensure regenerates the view for one catalogue when stale (or always,
// with force). Returns the view path, or ErrNotExist-wrapped error when
// the CSV is absent.
func (b *ViewBuilder) Ensure(name string, force bool) (string, error) {
	def, ok := Lookup(name)
	if !ok {
		return "", &UnknownCatalogueError{Name: name}
	}

	csvPath := b.csvPath(name)
	info, err := os.Stat(csvPath)
	if err != nil {
		return "", &LoadError{Catalogue: name, Err: err}
	}

	viewPath := b.ViewPath(name)
	if !force && !b.IsStale(name) {
		return viewPath, nil
	}

	if err := os.MkdirAll(b.jsonDir(), 0o755); err != nil {
		return "", fmt.Errorf("create view directory: %w", err)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		return "", &LoadError{Catalogue: name, Err: err}
	}

	view := View{
		Meta: ViewMeta{
			Catalogue:         name,
			GeneratedAtUTC:    utcNowISO(),
			SourceCSV:         filepath.Base(csvPath),
			SourceCSVMtimeUTC: info.ModTime().UTC().Truncate(time.Second).Format(time.RFC3339),
		},
		Records: []Entity{},
	}

	cat, err := buildCatalogue(def, data)
	if err != nil {
		// The view still gets written so consumers see the failure state
		// instead of a stale projection.
		view.Meta.Notes = "CSV unreadable or structurally invalid."
		view.Meta.Columns = []string{}
	} else {
		columns := projectionColumns(cat)
		view.Meta.RowCount = cat.Len()
		view.Meta.Columns = columns
		view.Records = projectRecords(cat, columns)
	}

	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(viewPath, out, 0o644); err != nil {
		return "", fmt.Errorf("write view: %w", err)
	}

	return viewPath, nil
}

// EnsureAll refreshes views for every registered catalogue with an
// existing CSV. Returns catalogue name -> view path for those written.
func (b *ViewBuilder) EnsureAll(force bool) map[string]string {
	out := make(map[string]string)
	for _, def := range All() {
		if _, err := os.Stat(b.csvPath(def.Name)); err != nil {
			continue
		}
		if p, err := b.Ensure(def.Name, force); err == nil {
			out[def.Name] = p
		}
	}
	return out
}

// Load ensures the view exists and returns its decoded content.
func (b *ViewBuilder) Load(name string) (*View, error) {
	p, err := b.Ensure(name, false)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read view: %w", err)
	}

	var view View
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("decode view: %w", err)
	}
	return &view, nil
}

// projectionColumns drops artefact columns and fully empty columns.
func projectionColumns(cat *Catalogue) []string {
	var columns []string
	for _, col := range cat.Columns {
		if col == "" || strings.HasPrefix(col, "Unnamed:") {
			continue
		}
		empty := true
		for _, row := range cat.Rows {
			if strings.TrimSpace(row[col]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			columns = append(columns, col)
		}
	}
	if columns == nil {
		columns = []string{}
	}
	return columns
}

func projectRecords(cat *Catalogue, columns []string) []Entity {
	records := make([]Entity, 0, cat.Len())
	for _, row := range cat.Rows {
		rec := make(Entity, len(columns))
		for _, col := range columns {
			rec[col] = row[col]
		}
		records = append(records, rec)
	}
	return records
}

func utcNowISO() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
