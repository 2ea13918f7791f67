package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/winvep/internal/interval"
	"github.com/inodb/winvep/internal/variant"
)

var deltaKeyColumns = []string{"chrom", "pos", "id", "ref", "alt"}

// WriteDeltas replaces the delta table with one row per variant and one
// DOUBLE column per feature. variants and deltas must line up.
func (s *Store) WriteDeltas(features []string, variants []variant.Variant, deltas [][]float64) error {
	if len(variants) != len(deltas) {
		return fmt.Errorf("write deltas: %d variants, %d delta rows", len(variants), len(deltas))
	}

	cols := []string{"chrom VARCHAR", "pos BIGINT", "id VARCHAR", "ref VARCHAR", "alt VARCHAR"}
	for _, f := range features {
		if isKeyColumn(f) {
			return fmt.Errorf("write deltas: feature name %q collides with a key column", f)
		}
		cols = append(cols, quoteIdent(f)+" DOUBLE")
	}

	if _, err := s.db.Exec("DROP TABLE IF EXISTS " + DeltaTable); err != nil {
		return fmt.Errorf("drop delta table: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", DeltaTable, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("create delta table: %w", err)
	}

	return s.appendRows(DeltaTable, len(variants), func(i int) ([]driver.Value, error) {
		d := deltas[i]
		if len(d) != len(features) {
			return nil, fmt.Errorf("delta row %d has %d values, want %d", i, len(d), len(features))
		}
		v := variants[i]
		row := make([]driver.Value, 0, 5+len(d))
		row = append(row, v.Chrom, int64(v.Pos), v.ID, v.Ref, v.Alt)
		for _, x := range d {
			row = append(row, x)
		}
		return row, nil
	})
}

// LookupDelta returns the stored deltas of a variant keyed by feature name,
// or nil if the variant is not in the table.
func (s *Store) LookupDelta(chrom string, pos int, ref, alt string) (map[string]float64, error) {
	rows, err := s.db.Query("SELECT * FROM "+DeltaTable+" WHERE chrom=? AND pos=? AND ref=? AND alt=? LIMIT 1",
		chrom, int64(pos), ref, alt)
	if err != nil {
		return nil, fmt.Errorf("query delta: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("delta columns: %w", err)
	}
	if !rows.Next() {
		return nil, rows.Err()
	}

	var (
		key    [5]any
		values = make([]float64, len(cols)-len(key))
		dest   = make([]any, 0, len(cols))
	)
	for i := range key {
		dest = append(dest, &key[i])
	}
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan delta: %w", err)
	}

	out := make(map[string]float64, len(values))
	for i, v := range values {
		out[cols[len(key)+i]] = v
	}
	return out, nil
}

// WriteIntervals appends intervals to the interval table, tagged with kind
// (for example "defined" or "unmasked"). Existing rows of the same kind are
// replaced.
func (s *Store) WriteIntervals(kind string, ivs []interval.Interval) error {
	if _, err := s.db.Exec("DELETE FROM "+IntervalTable+" WHERE kind=?", kind); err != nil {
		return fmt.Errorf("clear %s intervals: %w", kind, err)
	}
	return s.appendRows(IntervalTable, len(ivs), func(i int) ([]driver.Value, error) {
		iv := ivs[i]
		return []driver.Value{iv.Chrom, int64(iv.Start), int64(iv.End), kind}, nil
	})
}

// IntervalLength returns the total length of the stored intervals of kind.
func (s *Store) IntervalLength(kind string) (int64, error) {
	var n int64
	err := s.db.QueryRow("SELECT COALESCE(SUM(chrom_end - chrom_start), 0) FROM "+IntervalTable+" WHERE kind=?", kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum %s intervals: %w", kind, err)
	}
	return n, nil
}

// appendRows bulk-inserts n rows through the DuckDB Appender API.
func (s *Store) appendRows(table string, n int, row func(i int) ([]driver.Value, error)) error {
	if n == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := 0; i < n; i++ {
		values, err := row(i)
		if err != nil {
			return err
		}
		if err := appender.AppendRow(values...); err != nil {
			return fmt.Errorf("append %s row %d: %w", table, i, err)
		}
	}

	return appender.Flush()
}

func isKeyColumn(name string) bool {
	for _, c := range deltaKeyColumns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
