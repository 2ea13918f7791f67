package duckdb

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/inodb/winvep/internal/variant"
)

// Recognized column names, matched case-insensitively.
var columnAliases = map[string][]string{
	"chrom": {"chrom", "chromosome", "chr"},
	"pos":   {"pos", "position"},
	"ref":   {"ref", "reference_allele"},
	"alt":   {"alt", "alternate_allele"},
	"id":    {"id", "variant_id"},
}

// LoadVariants reads a variant table from a Parquet, CSV or TSV file.
// Positions in the file are 0-based. Rows are returned in file order.
func (s *Store) LoadVariants(path string) ([]variant.Variant, error) {
	from, err := scanExpr(path)
	if err != nil {
		return nil, err
	}

	cols, err := s.columns(from)
	if err != nil {
		return nil, fmt.Errorf("read variant table %s: %w", path, err)
	}

	resolved := make(map[string]string)
	var missing []string
	for _, key := range []string{"chrom", "pos", "ref", "alt", "id"} {
		name := findColumn(cols, columnAliases[key])
		if name == "" {
			if key != "id" {
				missing = append(missing, key)
			}
			continue
		}
		resolved[key] = name
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("variant table %s: missing required columns: %s", path, strings.Join(missing, ", "))
	}

	idExpr := "''"
	if name, ok := resolved["id"]; ok {
		idExpr = fmt.Sprintf("COALESCE(CAST(%s AS VARCHAR), '')", quoteIdent(name))
	}
	query := fmt.Sprintf(`SELECT
		CAST(%s AS VARCHAR), CAST(%s AS BIGINT), CAST(%s AS VARCHAR), CAST(%s AS VARCHAR), %s
		FROM %s`,
		quoteIdent(resolved["chrom"]), quoteIdent(resolved["pos"]),
		quoteIdent(resolved["ref"]), quoteIdent(resolved["alt"]), idExpr, from)

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query variant table %s: %w", path, err)
	}
	defer rows.Close()

	var variants []variant.Variant
	for rows.Next() {
		var (
			v   variant.Variant
			pos sql.NullInt64
		)
		if err := rows.Scan(&v.Chrom, &pos, &v.Ref, &v.Alt, &v.ID); err != nil {
			return nil, fmt.Errorf("scan variant %d: %w", len(variants)+1, err)
		}
		if !pos.Valid || pos.Int64 < 0 {
			return nil, fmt.Errorf("variant table %s: row %d: invalid position", path, len(variants)+1)
		}
		v.Pos = int(pos.Int64)
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return variants, nil
}

// scanExpr returns the DuckDB table function reading path. Text columns are
// read as VARCHAR so that alleles like T and F are never sniffed as booleans.
func scanExpr(path string) (string, error) {
	name := strings.ToLower(strings.TrimSuffix(path, ".gz"))
	switch filepath.Ext(name) {
	case ".parquet", ".pq":
		return fmt.Sprintf("read_parquet(%s)", quoteLiteral(path)), nil
	case ".csv":
		return fmt.Sprintf("read_csv_auto(%s, header=true, all_varchar=true)", quoteLiteral(path)), nil
	case ".tsv", ".txt", ".tab":
		return fmt.Sprintf("read_csv_auto(%s, header=true, all_varchar=true, delim='\t')", quoteLiteral(path)), nil
	}
	return "", fmt.Errorf("unsupported variant table format: %s", path)
}

// columns returns the column names of a table expression.
func (s *Store) columns(from string) ([]string, error) {
	rows, err := s.db.Query("SELECT * FROM " + from + " LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}

func findColumn(cols, names []string) string {
	for _, c := range cols {
		lc := strings.ToLower(strings.TrimLeft(strings.TrimSpace(c), "#"))
		for _, n := range names {
			if lc == n {
				return c
			}
		}
	}
	return ""
}
