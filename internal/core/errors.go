package core

// errors.go defines the three error kinds the registry distinguishes:
//
//   - UnknownCatalogueError: the caller asked for a name outside the fixed
//     catalogue set. A programming error, not recoverable at this layer.
//   - LoadError: the backing file is missing, unreadable, or structurally
//     invalid (no primary id column, duplicate identifiers). Carries the
//     catalogue name and the underlying cause.
//   - NotFoundError: a looked-up identifier does not exist. Expected and
//     recoverable; callers should treat the entity as absent.
//
// Relationship resolution never raises for dangling foreign identifiers.

import (
	"errors"
	"fmt"
)

// UnknownCatalogueError indicates a catalogue name outside the fixed set.
type UnknownCatalogueError struct {
	Name string
}

func (e *UnknownCatalogueError) Error() string {
	return fmt.Sprintf("unknown catalogue %q", e.Name)
}

// LoadError indicates the catalogue's backing file could not be loaded.
type LoadError struct {
	Catalogue string
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalogue %s: %v", e.Catalogue, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates an identifier with no matching row.
type NotFoundError struct {
	Catalogue string
	ID        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entity %q not found in catalogue %s", e.ID, e.Catalogue)
}

// ErrReadOnlySource is returned when an append is attempted against a
// source that cannot accept writes (postgres, s3).
var ErrReadOnlySource = errors.New("catalogue source is read-only")

// ErrBackboneImmutable is returned when an append targets a backbone
// catalogue.
var ErrBackboneImmutable = errors.New("backbone catalogue is immutable")

// IsUnknownCatalogue reports whether err is an UnknownCatalogueError.
func IsUnknownCatalogue(err error) bool {
	var e *UnknownCatalogueError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsLoadError reports whether err is a LoadError.
func IsLoadError(err error) bool {
	var e *LoadError
	return errors.As(err, &e)
}
