package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir reads catalogues from a local directory of <NAME>.csv files.
// This is the default driver and the only one that accepts appends.
type Dir struct {
	dir string
}

// NewDir creates a directory source rooted at dir.
func NewDir(dir string) (*Dir, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalogue directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalogue directory %s is not a directory", dir)
	}
	return &Dir{dir: dir}, nil
}

// Path returns the backing file path for a catalogue name.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.dir, name+".csv")
}

// Root returns the directory the source reads from.
func (d *Dir) Root() string {
	return d.dir
}

// Read returns the file content for the named catalogue.
func (d *Dir) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(d.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", d.Path(name), ErrNotExist)
		}
		return nil, err
	}
	return data, nil
}

// Append writes rows to the end of the catalogue file. A newline is
// inserted first when the file does not already end with one, so appended
// rows never merge into the last existing record.
func (d *Dir) Append(_ context.Context, name string, rows [][]string) error {
	path := d.Path(name)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, ErrNotExist)
		}
		return err
	}

	needsNewline, err := missingTrailingNewline(path)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, fs.FileMode(0o644))
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if needsNewline {
		if _, err := f.Write([]byte("\n")); err != nil {
			return fmt.Errorf("append to %s: %w", path, err)
		}
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("append to %s: %w", path, err)
	}

	return f.Close()
}

// missingTrailingNewline reports whether a non-empty file lacks a final
// newline byte.
func missingTrailingNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}

	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, info.Size()-1); err != nil && err != io.EOF {
		return false, err
	}
	return buf[0] != '\n', nil
}
