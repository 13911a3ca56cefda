// Package core provides the catalogue registry: loading, validation, and
// read accessors for the CRT catalogues. This package has no HTTP
// dependencies and can be used by any frontend.
package core

// Kind classifies how a catalogue may change between process runs.
type Kind string

const (
	// KindBackbone marks an authoritative catalogue that is never edited
	// by this tool.
	KindBackbone Kind = "backbone"

	// KindAppendOnly marks a catalogue that may gain organisation rows
	// over time. Existing rows are never altered.
	KindAppendOnly Kind = "append-only"
)

// Entity is one catalogue row: a mapping from column name to value.
// Column sets differ per catalogue, so rows are dynamic rather than
// one fixed record type per catalogue.
type Entity map[string]string

// Clone returns an independent copy of the entity.
func (e Entity) Clone() Entity {
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Definition describes one member of the fixed catalogue set.
// Definitions are registered once at init time; the loaded content lives
// in Catalogue.
type Definition struct {
	Name      string // Short code: "CRT-C"
	Kind      Kind   // backbone or append-only
	Label     string // Display name: "Controls"
	PrimaryID string // Column holding each row's unique identifier
	IDPrefix  string // Expected identifier prefix, e.g. "CRT-C-"

	// RelationshipFields lists columns whose values are semicolon-separated
	// identifier lists pointing into another catalogue.
	RelationshipFields []string
}

// Catalogue is the loaded, immutable snapshot of one catalogue file.
// Row order follows file order. A catalogue is safe for concurrent
// readers once loaded.
type Catalogue struct {
	Name      string
	Kind      Kind
	Label     string
	PrimaryID string
	Columns   []string
	Rows      []Entity

	byID map[string]int // primary id -> row position
}

// Len returns the number of rows.
func (c *Catalogue) Len() int {
	return len(c.Rows)
}

// Lookup returns the entity with the given primary identifier.
// The match is exact and case-sensitive.
func (c *Catalogue) Lookup(id string) (Entity, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return c.Rows[i], true
}

// HasColumn reports whether the catalogue schema contains the column.
func (c *Catalogue) HasColumn(name string) bool {
	for _, col := range c.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// IDs returns all primary identifiers in row order.
func (c *Catalogue) IDs() []string {
	ids := make([]string, 0, len(c.Rows))
	for _, row := range c.Rows {
		ids = append(ids, row[c.PrimaryID])
	}
	return ids
}

// Edge is a typed, directional relationship between two entities.
// The field names follow the locked bundle schema.
type Edge struct {
	FromType string `json:"from_type"`
	FromID   string `json:"from_id"`
	Rel      string `json:"rel"`
	ToType   string `json:"to_type"`
	ToID     string `json:"to_id"`
}

// FailedRow describes a row rejected during an append operation.
type FailedRow struct {
	RowNumber int    `json:"rowNumber"` // 1-indexed position within the request
	Reason    string `json:"reason"`
	ID        string `json:"id,omitempty"`
}

// AppendResult is the outcome of appending organisation rows to an
// append-only catalogue.
type AppendResult struct {
	BatchID   string      `json:"batchId"`
	Catalogue string      `json:"catalogue"`
	Appended  int         `json:"appended"`
	Skipped   int         `json:"skipped"`
	Failed    []FailedRow `json:"failedRows,omitempty"`
}
