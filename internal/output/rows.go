package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/winvep/internal/window"
)

// RowWriter writes window rows for consumption by an external model.
type RowWriter struct {
	w *bufio.Writer
}

// NewRowWriter creates a window row writer.
func NewRowWriter(w io.Writer) *RowWriter {
	return &RowWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (rw *RowWriter) WriteHeader() error {
	_, err := rw.w.WriteString("variant_index\tstatus\tstrand\tsequence\n")
	return err
}

// Write writes a single row.
func (rw *RowWriter) Write(row window.Row) error {
	_, err := rw.w.WriteString(strings.Join([]string{
		strconv.Itoa(row.VariantIndex),
		row.Status.String(),
		row.Strand.String(),
		row.Sequence,
	}, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (rw *RowWriter) Flush() error {
	return rw.w.Flush()
}
