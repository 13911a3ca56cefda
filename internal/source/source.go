// Package source abstracts where catalogue CSV content comes from.
//
// Every driver resolves a catalogue name (e.g. "CRT-C") to raw CSV bytes.
// The dir driver additionally supports appending rows, which backs the
// append-only catalogue extension flow; the remaining drivers are
// read-only mirrors.
package source

import (
	"context"
	"errors"
)

// Drivers selectable via CATALOGUE_SOURCE.
const (
	DriverDir      = "dir"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// ErrNotExist is returned when no backing data exists for a catalogue name.
var ErrNotExist = errors.New("catalogue data does not exist")

// Source fetches the raw CSV content for a catalogue name.
type Source interface {
	// Read returns the complete CSV content for the named catalogue.
	// Returns an error wrapping ErrNotExist when there is no backing data.
	Read(ctx context.Context, name string) ([]byte, error)
}

// Writable is implemented by sources that can accept appended rows.
type Writable interface {
	Source

	// Append adds rows to the end of the named catalogue's backing data.
	// Existing content is never rewritten.
	Append(ctx context.Context, name string, rows [][]string) error
}
