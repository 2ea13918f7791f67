package output

import (
	"bufio"
	"io"
	"strconv"

	"github.com/inodb/winvep/internal/interval"
)

// BEDWriter writes intervals as three-column BED.
type BEDWriter struct {
	w *bufio.Writer
}

// NewBEDWriter creates a BED writer.
func NewBEDWriter(w io.Writer) *BEDWriter {
	return &BEDWriter{w: bufio.NewWriter(w)}
}

// Write writes one interval. BED coordinates are 0-based half-open, the same
// as Interval.
func (bw *BEDWriter) Write(iv interval.Interval) error {
	bw.w.WriteString(iv.Chrom)
	bw.w.WriteByte('\t')
	bw.w.WriteString(strconv.Itoa(iv.Start))
	bw.w.WriteByte('\t')
	bw.w.WriteString(strconv.Itoa(iv.End))
	return bw.w.WriteByte('\n')
}

// WriteAll writes every interval in order.
func (bw *BEDWriter) WriteAll(ivs []interval.Interval) error {
	for _, iv := range ivs {
		if err := bw.Write(iv); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (bw *BEDWriter) Flush() error {
	return bw.w.Flush()
}
