package core

// csv.go handles the tabular file format behind every catalogue.
//
// Catalogue CSVs are maintained by hand and by spreadsheet exports, so the
// reader tolerates the usual artefacts: invalid UTF-8 bytes, BOM, ragged
// rows, preamble lines before the header, and Excel formula prefixes.
// Column sets are catalogue-specific; the only structural requirement is
// that the primary id column exists in the header.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxHeaderSearchRows is the maximum number of rows to scan for the header.
var MaxHeaderSearchRows = 20

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

// parseCSV reads all records, tolerating ragged rows and lazy quoting.
func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// CleanCell removes common CSV artefacts from a cell value:
// - Trims whitespace (including BOM)
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// findHeaderRow scans the first MaxHeaderSearchRows records for a row
// containing the primary id column. Returns -1 if none is found.
func findHeaderRow(records [][]string, primaryID string) int {
	maxRows := MaxHeaderSearchRows
	if len(records) < maxRows {
		maxRows = len(records)
	}

	for i := 0; i < maxRows; i++ {
		for _, cell := range records[i] {
			if strings.EqualFold(CleanCell(cell), primaryID) {
				return i
			}
		}
	}
	return -1
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// buildCatalogue assembles an immutable Catalogue from raw CSV content.
// Row order follows file order. Fails when the primary id column is
// missing, a row has an empty identifier, or an identifier is duplicated.
func buildCatalogue(def Definition, data []byte) (*Catalogue, error) {
	records, err := parseCSV(sanitizeUTF8(data))
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	headerIdx := findHeaderRow(records, def.PrimaryID)
	if headerIdx < 0 {
		return nil, fmt.Errorf("missing primary id column %q", def.PrimaryID)
	}

	var columns []string
	for _, cell := range records[headerIdx] {
		columns = append(columns, CleanCell(cell))
	}

	// Resolve the canonical spelling of the primary id column. Header
	// matching is case-insensitive but lookups stay exact afterwards.
	primary := def.PrimaryID
	primaryPos := -1
	for i, col := range columns {
		if strings.EqualFold(col, def.PrimaryID) {
			primary = col
			primaryPos = i
			break
		}
	}
	if primaryPos < 0 {
		return nil, fmt.Errorf("missing primary id column %q", def.PrimaryID)
	}

	cat := &Catalogue{
		Name:      def.Name,
		Kind:      def.Kind,
		Label:     def.Label,
		PrimaryID: primary,
		Columns:   columns,
		byID:      make(map[string]int),
	}

	for i, row := range records[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}

		entity := make(Entity, len(columns))
		for j, col := range columns {
			if col == "" {
				continue
			}
			if j < len(row) {
				entity[col] = strings.TrimSpace(row[j])
			} else {
				entity[col] = ""
			}
		}

		id := entity[primary]
		if id == "" {
			return nil, fmt.Errorf("row %d: empty primary id", headerIdx+i+2)
		}
		if _, dup := cat.byID[id]; dup {
			return nil, fmt.Errorf("duplicate primary id %q", id)
		}

		cat.byID[id] = len(cat.Rows)
		cat.Rows = append(cat.Rows, entity)
	}

	return cat, nil
}

// SplitIDList parses a relationship field value into individual
// identifiers. The delimiter is semicolon; values are trimmed and empty
// segments dropped. An empty or whitespace-only value yields nil.
func SplitIDList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	var ids []string
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// looksCommaDelimited reports whether a relationship list value appears to
// use commas instead of the canonical semicolon delimiter. Catalogue data
// with comma-delimited lists is a data defect worth surfacing, not a
// format to silently accept.
func looksCommaDelimited(value string) bool {
	return strings.Contains(value, ",") && !strings.Contains(value, ";")
}
