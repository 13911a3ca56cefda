package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres reads catalogues mirrored into Postgres tables, one table per
// catalogue. Mirror tables carry the catalogue's columns plus a row_seq
// column preserving file order; the column set comes from the result
// descriptor, so the dynamic per-catalogue schema survives the round
// trip. The driver is read-only: appending organisation rows happens
// wherever the mirror is maintained, not through this tool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres source backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// TableName maps a catalogue name to its mirror table: "CRT-C" -> "crt_c".
func TableName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "-", "_"))
}

// Read selects the full mirror table and renders it as CSV so the loader
// sees the same shape regardless of driver.
func (p *Postgres) Read(ctx context.Context, name string) ([]byte, error) {
	table := pgx.Identifier{TableName(name)}.Sanitize()

	rows, err := p.pool.Query(ctx, "SELECT * FROM "+table+" ORDER BY row_seq")
	if err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("table %s: %w", table, ErrNotExist)
		}
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	// row_seq is mirror bookkeeping, not catalogue data.
	descs := rows.FieldDescriptions()
	var header []string
	keep := make([]int, 0, len(descs))
	for i, d := range descs {
		if d.Name == "row_seq" {
			continue
		}
		header = append(header, d.Name)
		keep = append(keep, i)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	record := make([]string, len(keep))
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		for j, i := range keep {
			if values[i] == nil {
				record[j] = ""
			} else {
				record[j] = fmt.Sprint(values[i])
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// isUndefinedTable matches the Postgres undefined_table error (42P01).
func isUndefinedTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "42P01")
}
