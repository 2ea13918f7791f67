package window

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/winvep/internal/variant"
)

func testBatch(t *testing.T) *Batch {
	t.Helper()
	seq := strings.Repeat("ACGT", 10)
	b := newBuilder(t, 8, true, "chr1", seq)
	batch, _, err := b.Prepare([]variant.Variant{
		{Chrom: "chr1", Pos: 10, Ref: "G", Alt: "C"},
		{Chrom: "chr1", Pos: 13, Ref: "C", Alt: "T"},
	})
	require.NoError(t, err)
	return batch
}

func TestBatch_RowRandomAccessMatchesIteration(t *testing.T) {
	batch := testBatch(t)

	var iterated []Row
	for row, err := range batch.Rows() {
		require.NoError(t, err)
		iterated = append(iterated, row)
	}
	require.Len(t, iterated, batch.Len())

	// Read backwards: every row is recomputed independently.
	for k := batch.Len() - 1; k >= 0; k-- {
		row, err := batch.Row(k)
		require.NoError(t, err)
		assert.Equal(t, iterated[k], row)
	}
}

func TestBatch_RowsRestartable(t *testing.T) {
	batch := testBatch(t)

	first := 0
	for range batch.Rows() {
		first++
		if first == 3 {
			break
		}
	}

	var seqs []string
	for row, err := range batch.RowsFrom(6) {
		require.NoError(t, err)
		seqs = append(seqs, row.Sequence)
	}
	want, err := batch.Sequences(6, 8)
	require.NoError(t, err)
	assert.Equal(t, want, seqs)
}

func TestBatch_RowOutOfRange(t *testing.T) {
	batch := testBatch(t)

	_, err := batch.Row(-1)
	assert.Error(t, err)
	_, err = batch.Row(batch.Len())
	assert.Error(t, err)

	_, err = batch.Sequences(7, 9)
	assert.Error(t, err)
}

func TestBatch_ConcurrentReaders(t *testing.T) {
	batch := testBatch(t)
	want, err := batch.Sequences(0, batch.Len())
	require.NoError(t, err)

	var wg sync.WaitGroup
	got := make([][]string, 8)
	for w := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[w], _ = batch.Sequences(0, batch.Len())
		}()
	}
	wg.Wait()

	for _, g := range got {
		assert.Equal(t, want, g)
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		block  int
		status Status
		strand Strand
	}{
		{0, Ref, Forward},
		{1, Ref, Reverse},
		{2, Alt, Forward},
		{3, Alt, Reverse},
	}
	for _, tt := range tests {
		status, strand := Layout(tt.block)
		assert.Equal(t, tt.status, status)
		assert.Equal(t, tt.strand, strand)
	}
}
