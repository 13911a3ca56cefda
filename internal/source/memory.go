package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sync"
)

// Memory holds catalogue content in process memory. Used by tests and
// for seeding fixtures; supports appends so the full append-only flow can
// be exercised without a filesystem.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory creates an empty in-memory source.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// Set stores the CSV content for a catalogue name, replacing any
// existing content.
func (m *Memory) Set(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), data...)
}

// Read returns the stored content for the named catalogue.
func (m *Memory) Read(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// Append adds rows to the end of the stored content.
func (m *Memory) Append(_ context.Context, name string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNotExist)
	}

	var buf bytes.Buffer
	buf.Write(data)
	if buf.Len() > 0 && data[len(data)-1] != '\n' {
		buf.WriteByte('\n')
	}

	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return err
	}

	m.files[name] = buf.Bytes()
	return nil
}
