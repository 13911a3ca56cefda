// Package catalogues registers the fixed CRT catalogue set with the core
// registry. Import this package to ensure all catalogues are registered.
package catalogues

// This file exists to provide a single import point.
// Each catalogue file uses init() to register its definitions.
