// Package duckdb keeps variant tables, interval tables and scored deltas in
// DuckDB, and moves them in and out of Parquet and CSV files.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Table names managed by the store.
const (
	DeltaTable    = "variant_deltas"
	IntervalTable = "intervals"
)

// Store manages a DuckDB connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the fixed tables. The delta table depends on the
// predictor's features and is created by WriteDeltas.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ` + IntervalTable + ` (
		chrom VARCHAR,
		chrom_start BIGINT,
		chrom_end BIGINT,
		kind VARCHAR
	)`)
	return err
}

// ExportParquet writes a store table to a Parquet file.
func (s *Store) ExportParquet(table, path string) error {
	if table != DeltaTable && table != IntervalTable {
		return fmt.Errorf("unknown table %q", table)
	}
	if _, err := s.db.Exec(fmt.Sprintf(`COPY %s TO %s (FORMAT PARQUET)`, table, quoteLiteral(path))); err != nil {
		return fmt.Errorf("export %s to parquet: %w", table, err)
	}
	return nil
}

// quoteIdent quotes a column name for use in SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a string literal for use in SQL.
func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
