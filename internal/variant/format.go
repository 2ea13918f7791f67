package variant

import (
	"fmt"
	"strings"
)

// Input formats.
const (
	FormatVCF     = "vcf"
	FormatTSV     = "tsv"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// DetectFormat guesses the table format from the file name.
// Unknown extensions default to TSV.
func DetectFormat(path string) string {
	lower := strings.ToLower(path)
	lower = strings.TrimSuffix(lower, ".gz")

	switch {
	case strings.HasSuffix(lower, ".vcf"):
		return FormatVCF
	case strings.HasSuffix(lower, ".parquet"), strings.HasSuffix(lower, ".pq"):
		return FormatParquet
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV
	default:
		return FormatTSV
	}
}

// Open returns a text parser for path in the given format ("" to detect).
// Parquet is not a text format and is read through DuckDB instead.
func Open(path, format string) (Parser, error) {
	if format == "" {
		format = DetectFormat(path)
	}
	switch format {
	case FormatVCF:
		return NewVCFParser(path)
	case FormatTSV:
		return NewTableParser(path, "\t")
	case FormatCSV:
		return NewTableParser(path, ",")
	default:
		return nil, fmt.Errorf("unsupported text variant format %q", format)
	}
}
