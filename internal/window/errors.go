package window

import (
	"fmt"

	"github.com/inodb/winvep/internal/variant"
)

// ValidationError reports a variant whose window does not match the genome,
// usually stale coordinates or a different genome build.
type ValidationError struct {
	Index   int
	Variant variant.Variant
	Start   int
	End     int
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("variant %d (%s) window %s:%d-%d: %s",
		e.Index, e.Variant.String(), e.Variant.Chrom, e.Start, e.End, e.Reason)
}

// AmbiguousSequenceError reports a window that is not made of exactly the
// four bases A, C, G and T. Found lists the distinct symbols in the window.
type AmbiguousSequenceError struct {
	Index   int
	Variant variant.Variant
	Status  Status
	Strand  Strand
	Found   string
}

func (e *AmbiguousSequenceError) Error() string {
	return fmt.Sprintf("variant %d (%s) %s%s window: symbols %q, want exactly A, C, G, T",
		e.Index, e.Variant.String(), e.Status, e.Strand, e.Found)
}
