// Package output provides tab-delimited writers for deltas, intervals and
// window rows.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/winvep/internal/variant"
)

// DeltaWriter writes per-variant feature deltas in tab-delimited format.
type DeltaWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewDeltaWriter creates a delta writer with one column per feature after
// the variant columns.
func NewDeltaWriter(w io.Writer, features []string) *DeltaWriter {
	columns := append([]string{"chrom", "pos", "id", "ref", "alt"}, features...)
	return &DeltaWriter{
		w:       bufio.NewWriter(w),
		columns: columns,
	}
}

// WriteHeader writes the header line.
func (dw *DeltaWriter) WriteHeader() error {
	_, err := dw.w.WriteString(strings.Join(dw.columns, "\t") + "\n")
	return err
}

// Write writes the deltas of a single variant. Positions are written 0-based.
func (dw *DeltaWriter) Write(v variant.Variant, delta []float64) error {
	if want := len(dw.columns) - 5; len(delta) != want {
		return fmt.Errorf("variant %s: %d delta values, want %d", v.String(), len(delta), want)
	}

	id := v.ID
	if id == "" {
		id = "-"
	}

	values := make([]string, 0, len(dw.columns))
	values = append(values, v.Chrom, strconv.Itoa(v.Pos), id, v.Ref, v.Alt)
	for _, x := range delta {
		values = append(values, strconv.FormatFloat(x, 'g', -1, 64))
	}

	_, err := dw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (dw *DeltaWriter) Flush() error {
	return dw.w.Flush()
}
