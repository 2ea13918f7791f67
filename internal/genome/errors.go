package genome

import (
	"errors"
	"fmt"
)

// ErrUnknownChromosome is wrapped by a RangeError for a chromosome the genome does not have.
var ErrUnknownChromosome = errors.New("unknown chromosome")

// FormatError reports a malformed FASTA resource.
type FormatError struct {
	Line    int
	Message string
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("fasta format error: %s", e.Message)
	}
	return fmt.Sprintf("fasta format error at line %d: %s", e.Line, e.Message)
}

// RangeError reports a window request outside a chromosome's bounds.
// Length is -1 when the chromosome is unknown.
type RangeError struct {
	Chrom  string
	Start  int
	End    int
	Length int
}

func (e *RangeError) Error() string {
	if e.Length < 0 {
		return fmt.Sprintf("window %s:%d-%d: unknown chromosome", e.Chrom, e.Start, e.End)
	}
	return fmt.Sprintf("window %s:%d-%d out of range for length %d", e.Chrom, e.Start, e.End, e.Length)
}

func (e *RangeError) Unwrap() error {
	if e.Length < 0 {
		return ErrUnknownChromosome
	}
	return nil
}
