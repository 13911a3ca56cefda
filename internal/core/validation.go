package core

// validation.go validates organisation rows before they are appended to an
// append-only catalogue.
//
// Validation happens at two levels:
//  1. Identifier validation: present, correctly prefixed, and not colliding
//     with an existing row or another row in the same batch.
//  2. Column validation: only columns from the catalogue's loaded schema
//     are accepted, so an append can never widen the schema.
//
// The validator returns all errors for a row, so callers can surface the
// complete problem list at once.

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult contains the result of validating a row.
type ValidationResult struct {
	Valid  bool              // True if all validations passed
	Errors []ValidationError // List of validation errors (empty if Valid)
}

// ErrorText joins all error messages for display.
func (r ValidationResult) ErrorText() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// RowValidator validates append candidates against a loaded catalogue.
type RowValidator struct {
	def  Definition
	cat  *Catalogue
	seen map[string]bool // ids already accepted within this batch
}

// NewRowValidator creates a validator for one append batch.
func NewRowValidator(def Definition, cat *Catalogue) *RowValidator {
	return &RowValidator{
		def:  def,
		cat:  cat,
		seen: make(map[string]bool),
	}
}

// ValidateEntity checks one append candidate and returns all validation
// errors. Accepted identifiers are remembered so duplicates within the
// same batch are rejected too.
func (v *RowValidator) ValidateEntity(entity Entity) ValidationResult {
	result := ValidationResult{Valid: true}

	fail := func(field, value, message string) {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Value:   value,
			Message: message,
		})
	}

	id := strings.TrimSpace(entity[v.cat.PrimaryID])
	switch {
	case id == "":
		fail(v.cat.PrimaryID, "", "required field is empty")
	case v.def.IDPrefix != "" && !strings.HasPrefix(id, v.def.IDPrefix):
		fail(v.cat.PrimaryID, id, fmt.Sprintf("identifier must start with %q", v.def.IDPrefix))
	default:
		if _, exists := v.cat.Lookup(id); exists {
			fail(v.cat.PrimaryID, id, "identifier already exists")
		} else if v.seen[id] {
			fail(v.cat.PrimaryID, id, "duplicate identifier within batch")
		}
	}

	for col := range entity {
		if !v.cat.HasColumn(col) {
			fail(col, entity[col], "column not in catalogue schema")
		}
	}

	if result.Valid {
		v.seen[id] = true
	}
	return result
}
