package window

import (
	"fmt"
	"iter"

	"github.com/inodb/winvep/internal/genome"
	"github.com/inodb/winvep/internal/variant"
)

// Batch is the lazy four-way expansion of a set of validated variants.
// Rows are computed on demand, so a batch can be read from any offset,
// any number of times, without holding 4N sequences in memory.
// A Batch is safe for concurrent use.
type Batch struct {
	builder  *Builder
	variants []variant.Variant
	indices  []int
}

// N returns the number of variants in the batch.
func (b *Batch) N() int {
	return len(b.variants)
}

// Len returns the number of rows, 4N.
func (b *Batch) Len() int {
	return 4 * len(b.variants)
}

// Variants returns the batch variants in block order.
func (b *Batch) Variants() []variant.Variant {
	return b.variants
}

// Index returns the caller's index of the i-th batch variant.
func (b *Batch) Index(i int) int {
	return b.indices[i]
}

// Layout returns the status and strand of rows in block k/N.
func Layout(block int) (Status, Strand) {
	return Status(block / 2), Strand(block % 2)
}

// Row computes row k. Substitution is applied to the forward window
// before the reverse complement is taken.
func (b *Batch) Row(k int) (Row, error) {
	n := len(b.variants)
	if k < 0 || k >= 4*n {
		return Row{}, fmt.Errorf("row %d out of range [0, %d)", k, 4*n)
	}
	i := k % n
	status, strand := Layout(k / n)
	v := b.variants[i]
	index := b.indices[i]

	start, end := b.builder.Bounds(v)
	seq, err := b.builder.genome.Window(v.Chrom, start, end)
	if err != nil {
		return Row{}, fmt.Errorf("variant %d (%s): %w", index, v.String(), err)
	}
	if status == Alt {
		seq = substitute(seq, b.builder.Center(), v.Alt[0])
	}
	if strand == Reverse {
		seq = genome.ReverseComplement(seq)
	}
	if bad := checkBases(seq); bad != nil {
		return Row{}, &AmbiguousSequenceError{Index: index, Variant: v, Status: status, Strand: strand, Found: bad.found}
	}

	return Row{VariantIndex: index, Status: status, Strand: strand, Sequence: seq}, nil
}

// Rows yields rows 0..4N-1 in order. Iteration can be restarted by
// calling Rows again.
func (b *Batch) Rows() iter.Seq2[Row, error] {
	return b.RowsFrom(0)
}

// RowsFrom yields rows k..4N-1 in order.
func (b *Batch) RowsFrom(k int) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for ; k < b.Len(); k++ {
			if !yield(b.Row(k)) {
				return
			}
		}
	}
}

// Sequences computes rows [from, to) and returns just their sequences.
func (b *Batch) Sequences(from, to int) ([]string, error) {
	out := make([]string, 0, to-from)
	for k := from; k < to; k++ {
		row, err := b.Row(k)
		if err != nil {
			return nil, err
		}
		out = append(out, row.Sequence)
	}
	return out, nil
}
