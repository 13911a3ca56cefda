package core

// append.go implements the organisation-extension flow: adding new rows to
// an append-only catalogue. This is the one place the tool writes
// catalogue data. Backbone catalogues are rejected outright, existing rows
// are never touched, and the write goes through the source so the next
// load observes the new rows.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blakelabs/crt/internal/source"
	"github.com/google/uuid"
)

// AppendEntities validates and appends organisation rows to an append-only
// catalogue. Invalid rows are skipped and reported in the result; valid
// rows are written in request order. Returns an error only when nothing
// could be attempted at all (unknown catalogue, backbone target, read-only
// source, failed write).
func (h *Hub) AppendEntities(ctx context.Context, name string, entities []Entity) (*AppendResult, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, &UnknownCatalogueError{Name: name}
	}
	if def.Kind != KindAppendOnly {
		return nil, fmt.Errorf("catalogue %s: %w", name, ErrBackboneImmutable)
	}

	ws, ok := h.src.(source.Writable)
	if !ok {
		return nil, fmt.Errorf("catalogue %s: %w", name, ErrReadOnlySource)
	}

	cat, err := h.GetCatalogue(ctx, name)
	if err != nil {
		return nil, err
	}

	result := &AppendResult{
		BatchID:   uuid.New().String(),
		Catalogue: name,
	}

	validator := NewRowValidator(def, cat)
	var rows [][]string

	for i, entity := range entities {
		vr := validator.ValidateEntity(entity)
		if !vr.Valid {
			result.Skipped++
			result.Failed = append(result.Failed, FailedRow{
				RowNumber: i + 1,
				ID:        entity[cat.PrimaryID],
				Reason:    vr.ErrorText(),
			})
			continue
		}

		// Cells are written in the catalogue's column order; columns the
		// entity does not provide stay empty.
		row := make([]string, len(cat.Columns))
		for j, col := range cat.Columns {
			row[j] = entity[col]
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		if err := ws.Append(ctx, name, rows); err != nil {
			return nil, &LoadError{Catalogue: name, Err: fmt.Errorf("append: %w", err)}
		}
		result.Appended = len(rows)

		// Drop the memoized snapshot; the next access reloads with the
		// appended rows included.
		h.Invalidate(name)
	}

	slog.Info("catalogue rows appended",
		"batch_id", result.BatchID,
		"catalogue", name,
		"appended", result.Appended,
		"skipped", result.Skipped,
	)

	return result, nil
}
