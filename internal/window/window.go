// Package window builds fixed-width reference and alternate sequence windows
// around point variants, on both strands.
//
// Every variant expands to four rows. Across a batch of N variants the rows
// are laid out in four contiguous blocks of N:
//
//	[0N, 1N)  ref, forward
//	[1N, 2N)  ref, reverse
//	[2N, 3N)  alt, forward
//	[3N, 4N)  alt, reverse
//
// Downstream aggregation depends on this layout.
package window

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/winvep/internal/genome"
	"github.com/inodb/winvep/internal/variant"
)

// Status says whether a row carries the reference or the alternate allele.
type Status uint8

const (
	Ref Status = iota
	Alt
)

func (s Status) String() string {
	if s == Alt {
		return "alt"
	}
	return "ref"
}

// Strand is the orientation of a row's sequence.
type Strand uint8

const (
	Forward Strand = iota
	Reverse
)

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Config holds the window parameters.
type Config struct {
	// Size is the window width W. The window of a variant at Pos is
	// [Pos - W/2, Pos - W/2 + W) and the variant sits at offset W/2.
	// Both use the same floor division: for even W there is one base
	// fewer right of the variant than left of it, for odd W the sides
	// are equal.
	Size int

	// Strict aborts Prepare on the first failing variant. Otherwise
	// failures are returned alongside a batch of the passing variants.
	Strict bool
}

// Row is one sequence of the four-way expansion.
type Row struct {
	VariantIndex int // index of the variant in the caller's input
	Status       Status
	Strand       Strand
	Sequence     string
}

// Mask restricts the genomic windows a builder accepts.
// *interval.Index satisfies it.
type Mask interface {
	Covers(chrom string, start, end int) bool
}

// Builder derives windows from a genome.
type Builder struct {
	genome *genome.Genome
	cfg    Config
	mask   Mask
	logger *zap.Logger
}

// New creates a builder over g.
func New(g *genome.Genome, cfg Config) (*Builder, error) {
	if g == nil {
		return nil, errors.New("window: nil genome")
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("window: size must be positive, got %d", cfg.Size)
	}
	return &Builder{genome: g, cfg: cfg, logger: zap.NewNop()}, nil
}

// SetLogger sets the logger used to report skipped variants.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// SetMask makes Forward reject variants whose window is not covered by m.
func (b *Builder) SetMask(m Mask) {
	b.mask = m
}

// Config returns the builder's configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Center returns the offset of the variant inside its window.
func (b *Builder) Center() int {
	return b.cfg.Size / 2
}

// Bounds returns the half-open genomic window of a variant.
func (b *Builder) Bounds(v variant.Variant) (start, end int) {
	start = v.Pos - b.cfg.Size/2
	return start, start + b.cfg.Size
}

// Forward returns the validated forward-strand reference and alternate
// windows of v. index identifies v in error reports.
func (b *Builder) Forward(index int, v variant.Variant) (ref, alt string, err error) {
	start, end := b.Bounds(v)

	if len(v.Ref) != 1 || len(v.Alt) != 1 {
		return "", "", &ValidationError{
			Index: index, Variant: v, Start: start, End: end,
			Reason: "alleles must be single bases",
		}
	}

	ref, err = b.genome.Window(v.Chrom, start, end)
	if err != nil {
		return "", "", fmt.Errorf("variant %d (%s): %w", index, v.String(), err)
	}
	if len(ref) != b.cfg.Size {
		return "", "", &ValidationError{
			Index: index, Variant: v, Start: start, End: end,
			Reason: fmt.Sprintf("window length %d, want %d", len(ref), b.cfg.Size),
		}
	}

	if b.mask != nil && !b.mask.Covers(v.Chrom, start, end) {
		return "", "", &ValidationError{
			Index: index, Variant: v, Start: start, End: end,
			Reason: "window is not covered by the mask",
		}
	}

	center := b.Center()
	if ref[center] != v.Ref[0] {
		return "", "", &ValidationError{
			Index: index, Variant: v, Start: start, End: end,
			Reason: fmt.Sprintf("reference base %q at %s:%d, variant says %q",
				ref[center], v.Chrom, v.Pos, v.Ref),
		}
	}

	alt = substitute(ref, center, v.Alt[0])

	if bad := checkBases(ref); bad != nil {
		return "", "", &AmbiguousSequenceError{Index: index, Variant: v, Status: Ref, Strand: Forward, Found: bad.found}
	}
	if bad := checkBases(alt); bad != nil {
		return "", "", &AmbiguousSequenceError{Index: index, Variant: v, Status: Alt, Strand: Forward, Found: bad.found}
	}
	return ref, alt, nil
}

// Prepare validates variants and returns a lazy batch of their rows.
//
// In strict mode the first failure is returned as err. Otherwise every
// failure is collected in failures and the batch holds only the variants
// that passed; rows still carry each variant's original index.
func (b *Builder) Prepare(variants []variant.Variant) (batch *Batch, failures []error, err error) {
	batch = &Batch{builder: b}
	for i, v := range variants {
		if _, _, err := b.Forward(i, v); err != nil {
			if b.cfg.Strict {
				return nil, nil, err
			}
			b.logger.Warn("skipping variant",
				zap.Int("index", i),
				zap.String("chrom", v.Chrom),
				zap.Int("pos", v.Pos),
				zap.Error(err))
			failures = append(failures, err)
			continue
		}
		batch.variants = append(batch.variants, v)
		batch.indices = append(batch.indices, i)
	}
	return batch, failures, nil
}

// Build prepares variants and materializes every row in block order.
func (b *Builder) Build(variants []variant.Variant) ([]Row, []error, error) {
	batch, failures, err := b.Prepare(variants)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]Row, 0, batch.Len())
	for row, err := range batch.Rows() {
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
	return rows, failures, nil
}

// substitute returns seq with the byte at offset replaced.
func substitute(seq string, offset int, base byte) string {
	b := []byte(seq)
	b[offset] = base
	return string(b)
}

type badBases struct {
	found string
}

// checkBases requires seq to contain A, C, G and T and nothing else.
func checkBases(seq string) *badBases {
	var seen [256]bool
	distinct := 0
	ok := true
	var found []byte
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if seen[c] {
			continue
		}
		seen[c] = true
		distinct++
		found = append(found, c)
		switch c {
		case 'A', 'C', 'G', 'T':
		default:
			ok = false
		}
	}
	if !ok || distinct != 4 {
		return &badBases{found: string(found)}
	}
	return nil
}
