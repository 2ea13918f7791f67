package interval

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/winvep/internal/genome"
)

func mustGenome(t *testing.T, kv ...string) *genome.Genome {
	t.Helper()
	var names, seqs []string
	for i := 0; i < len(kv); i += 2 {
		names = append(names, kv[i])
		seqs = append(seqs, kv[i+1])
	}
	g, err := genome.New(names, seqs)
	require.NoError(t, err)
	return g
}

func TestUnmasked_SingleRun(t *testing.T) {
	g := mustGenome(t, "chr1", "NNACGTNN")
	assert.Equal(t, []Interval{{Chrom: "chr1", Start: 2, End: 6}}, Unmasked(g))
}

func TestFindMatching_EdgeCases(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want []Interval
	}{
		{"empty chromosome", "", nil},
		{"fully matching", "ACGTACGT", []Interval{{"c", 0, 8}}},
		{"no matches", "NNNNnnnn", nil},
		{"soft-masked split", "ACgtAC", []Interval{{"c", 0, 2}, {"c", 4, 6}}},
		{"single bases", "ANCNG", []Interval{{"c", 0, 1}, {"c", 2, 3}, {"c", 4, 5}}},
		{"match at end", "NNNA", []Interval{{"c", 3, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGenome(t, "c", tt.seq)
			assert.Equal(t, tt.want, Unmasked(g))
		})
	}
}

func TestDefined_IncludesLowercase(t *testing.T) {
	g := mustGenome(t, "c", "NNacgtACGTnnA")
	assert.Equal(t, []Interval{{"c", 2, 10}, {"c", 12, 13}}, Defined(g))
	assert.Equal(t, []Interval{{"c", 6, 10}, {"c", 12, 13}}, Unmasked(g))
}

func TestFindMatching_GenomeOrder(t *testing.T) {
	// chrZ first in the genome, so it comes first in the output.
	g := mustGenome(t, "chrZ", "AN", "chrA", "NA", "chrE", "")
	got := Unmasked(g)
	require.Len(t, got, 2)
	assert.Equal(t, "chrZ", got[0].Chrom)
	assert.Equal(t, "chrA", got[1].Chrom)
}

func TestFindMatching_NoRunAcrossChromosomes(t *testing.T) {
	// chr1 ends with a match at offset 1 and chr2 starts with one at
	// offset 0; they must stay separate intervals.
	g := mustGenome(t, "chr1", "NA", "chr2", "AN")
	assert.Equal(t, []Interval{{"chr1", 1, 2}, {"chr2", 0, 1}}, Unmasked(g))
}

func TestFindMatching_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const alphabet = "ACGTacgtN"

	for trial := 0; trial < 50; trial++ {
		b := make([]byte, rng.Intn(300))
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		seq := string(b)
		g := mustGenome(t, "c", seq)
		got := Unmasked(g)

		covered := make([]bool, len(seq))
		for i, iv := range got {
			require.Less(t, iv.Start, iv.End)
			if i > 0 {
				// Sorted, non-overlapping and maximal: a gap separates neighbours.
				require.Less(t, got[i-1].End, iv.Start)
			}
			for p := iv.Start; p < iv.End; p++ {
				covered[p] = true
			}
		}
		for p := range seq {
			assert.Equal(t, UnmaskedSymbols.Contains(seq[p]), covered[p], "offset %d of %q", p, seq)
		}

		assert.Equal(t, got, Merge(got), "merging a merged set is a no-op")
	}
}

func TestMerge(t *testing.T) {
	in := []Interval{
		{"chr2", 10, 20},
		{"chr1", 5, 8},
		{"chr2", 0, 5},
		{"chr2", 5, 10},
		{"chr1", 0, 3},
		{"chr1", 2, 4},
		{"chr2", 15, 30},
	}
	want := []Interval{
		{"chr2", 0, 30},
		{"chr1", 0, 4},
		{"chr1", 5, 8},
	}
	got := Merge(in)
	assert.Equal(t, want, got)
	assert.Equal(t, want, Merge(got))
	assert.Equal(t, Interval{"chr2", 10, 20}, in[0], "input untouched")
	assert.Nil(t, Merge(nil))
}

func TestInterval_String(t *testing.T) {
	iv := Interval{Chrom: "chr1", Start: 2, End: 6}
	assert.Equal(t, "chr1:2-6", iv.String())
	assert.Equal(t, 4, iv.Len())
}

func TestAll(t *testing.T) {
	g := mustGenome(t, "chr2", "NNNN", "empty", "", "chr1", "ac")
	assert.Equal(t, []Interval{
		{Chrom: "chr2", Start: 0, End: 4},
		{Chrom: "chr1", Start: 0, End: 2},
	}, All(g))
}
