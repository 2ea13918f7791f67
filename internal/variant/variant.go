// Package variant provides point variants and parsers for variant tables.
package variant

import "fmt"

// Variant is a single point variant. Pos is 0-based.
type Variant struct {
	Chrom string // Chromosome name as it appears in the genome
	Pos   int    // 0-based position
	ID    string // Optional identifier (e.g. rs ID), "" if absent
	Ref   string // Reference allele
	Alt   string // Alternate allele
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// String formats the variant as chrom:pos:ref>alt with a 0-based position.
func (v *Variant) String() string {
	return fmt.Sprintf("%s:%d:%s>%s", v.Chrom, v.Pos, v.Ref, v.Alt)
}
