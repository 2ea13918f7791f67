// Package interval computes merged runs of matching symbols across a genome.
package interval

import (
	"fmt"
	"sort"

	"github.com/inodb/winvep/internal/genome"
)

// Interval is a half-open, 0-based genomic range [Start, End).
type Interval struct {
	Chrom string
	Start int
	End   int
}

// Len returns End - Start.
func (iv Interval) Len() int {
	return iv.End - iv.Start
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", iv.Chrom, iv.Start, iv.End)
}

// Symbols is a byte membership table.
type Symbols [256]bool

// NewSymbols returns the set of bytes in s.
func NewSymbols(s string) *Symbols {
	var set Symbols
	for i := 0; i < len(s); i++ {
		set[s[i]] = true
	}
	return &set
}

// Contains reports whether b is in the set.
func (s *Symbols) Contains(b byte) bool {
	return s[b]
}

var (
	// DefinedSymbols are called bases, soft-masked or not.
	DefinedSymbols = NewSymbols("ACGTacgt")
	// UnmaskedSymbols are called bases outside soft-masked repeats.
	UnmaskedSymbols = NewSymbols("ACGT")
)

// Defined returns the maximal runs of A, C, G and T in either case.
func Defined(g *genome.Genome) []Interval {
	return FindMatching(g, DefinedSymbols)
}

// Unmasked returns the maximal runs of upper-case A, C, G and T.
func Unmasked(g *genome.Genome) []Interval {
	return FindMatching(g, UnmaskedSymbols)
}

// All returns one interval spanning each non-empty chromosome.
func All(g *genome.Genome) []Interval {
	var out []Interval
	for _, chrom := range g.Names() {
		if n := g.Len(chrom); n > 0 {
			out = append(out, Interval{Chrom: chrom, Start: 0, End: n})
		}
	}
	return out
}

// FindMatching returns the maximal intervals where every base is in symbols.
// Chromosomes are visited in genome order and the results concatenated.
func FindMatching(g *genome.Genome, symbols *Symbols) []Interval {
	var out []Interval
	for _, chrom := range g.Names() {
		seq, _ := g.Sequence(chrom)
		out = appendMatching(out, chrom, seq, symbols)
	}
	return out
}

// appendMatching scans seq once. Each matching offset i is the candidate
// [i, i+1) and is folded into the previous interval when i equals its End,
// so the run of candidates is merged in a single pass.
func appendMatching(out []Interval, chrom, seq string, symbols *Symbols) []Interval {
	first := len(out)
	for i := 0; i < len(seq); i++ {
		if !symbols[seq[i]] {
			continue
		}
		if n := len(out); n > first && out[n-1].End == i {
			out[n-1].End = i + 1
			continue
		}
		out = append(out, Interval{Chrom: chrom, Start: i, End: i + 1})
	}
	return out
}

// Merge coalesces overlapping or touching intervals per chromosome.
// Chromosomes keep the order in which they first appear in the input;
// within a chromosome the result is sorted by Start. The input is not modified.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	rank := make(map[string]int)
	for _, iv := range intervals {
		if _, ok := rank[iv.Chrom]; !ok {
			rank[iv.Chrom] = len(rank)
		}
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rank[sorted[i].Chrom], rank[sorted[j].Chrom]
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Start < sorted[j].Start
	})

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.Chrom == last.Chrom && iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}
