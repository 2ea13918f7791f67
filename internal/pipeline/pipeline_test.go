package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/winvep/internal/delta"
	"github.com/inodb/winvep/internal/duckdb"
	"github.com/inodb/winvep/internal/genome"
	"github.com/inodb/winvep/internal/interval"
	"github.com/inodb/winvep/internal/predict"
	"github.com/inodb/winvep/internal/variant"
	"github.com/inodb/winvep/internal/window"
)

// chr1 is 40 bases of ACGT repeats; chr2 has a soft-masked stretch.
const testFASTA = `>chr1 test chromosome
ACGTACGTACGTACGTACGT
ACGTACGTACGTACGTACGT
>chr2
ACGTACGTACGTacgtacgtACGTACGTACGT
>chr3
ACGTACGT
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(t *testing.T, variants string) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.GenomePath = writeFile(t, dir, "genome.fa", testFASTA)
	cfg.VariantsPath = writeFile(t, dir, "variants.vcf", variants)
	cfg.Window.Size = 8
	cfg.Predict = predict.Options{BatchSize: 3, Workers: 2}
	return cfg
}

const vcfHeader = "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	assert.ErrorContains(t, err, "genome path")

	cfg.GenomePath = "g.fa"
	assert.NoError(t, cfg.Validate())

	cfg.Window.Size = 0
	cfg.VariantsFormat = "bam"
	err = cfg.Validate()
	assert.ErrorContains(t, err, "window size")
	assert.ErrorContains(t, err, "bam")
}

func TestScore_Composition(t *testing.T) {
	// VCF positions are 1-based: POS 11 is offset 10 (G), POS 14 is offset 13 (C).
	cfg := testConfig(t, vcfHeader+
		"chr1\t11\trs1\tG\tA\t.\t.\t.\n"+
		"chr1\t14\t.\tC\tT\t.\t.\t.\n")

	r, err := New(cfg)
	require.NoError(t, err)
	res, err := r.Score(context.Background(), predict.Composition{})
	require.NoError(t, err)

	assert.Equal(t, []string{"gc_content", "cpg_density", "purine_fraction"}, res.Features)
	require.Len(t, res.Variants, 2)
	assert.Equal(t, 10, res.Variants[0].Pos)
	assert.Equal(t, "rs1", res.Variants[0].ID)
	assert.Equal(t, []int{0, 1}, res.Indices)
	assert.Empty(t, res.Failures)

	// G>A swaps a G for an A in the 8-base window (C>T on the reverse
	// strand): gc drops by 1/8 on both strands, purine count is unchanged.
	require.Len(t, res.Deltas, 2)
	assert.InDelta(t, -0.125, res.Deltas[0][0], 1e-12)
	assert.InDelta(t, 0, res.Deltas[0][2], 1e-12)
}

func TestScore_StrictFailsOnMismatch(t *testing.T) {
	cfg := testConfig(t, vcfHeader+
		"chr1\t11\t.\tG\tA\t.\t.\t.\n"+
		"chr1\t12\t.\tG\tA\t.\t.\t.\n")

	r, err := New(cfg)
	require.NoError(t, err)
	_, err = r.Score(context.Background(), predict.Composition{})

	var ve *window.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, 1, ve.Index)
}

func TestScore_LenientLogsAndSkips(t *testing.T) {
	cfg := testConfig(t, vcfHeader+
		"chr1\t12\t.\tG\tA\t.\t.\t.\n"+
		"chr1\t11\t.\tG\tA\t.\t.\t.\n"+
		"chr9\t11\t.\tG\tA\t.\t.\t.\n")
	cfg.Window.Strict = false

	core, logs := observer.New(zap.WarnLevel)
	r, err := New(cfg)
	require.NoError(t, err)
	r.SetLogger(zap.New(core))

	res, err := r.Score(context.Background(), predict.Composition{})
	require.NoError(t, err)

	assert.Len(t, res.Failures, 2)
	assert.True(t, errors.Is(res.Failures[1], genome.ErrUnknownChromosome))
	assert.Equal(t, []int{1}, res.Indices)
	assert.Len(t, res.Deltas, 1)

	assert.Equal(t, 2, logs.FilterMessage("skipping variant").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipped variants").Len())
}

func TestScore_RequireUnmasked(t *testing.T) {
	// chr2 offsets 12..19 are soft-masked.
	cfg := testConfig(t, vcfHeader+
		"chr2\t7\t.\tG\tA\t.\t.\t.\n"+
		"chr2\t11\t.\tG\tA\t.\t.\t.\n")
	cfg.Window.Strict = false
	cfg.RequireUnmasked = true

	r, err := New(cfg)
	require.NoError(t, err)
	res, err := r.Score(context.Background(), predict.Composition{})
	require.NoError(t, err)

	assert.Equal(t, []int{0}, res.Indices)
	require.Len(t, res.Failures, 1)
	var ve *window.ValidationError
	require.True(t, errors.As(res.Failures[0], &ve))
	assert.Contains(t, ve.Reason, "mask")
}

func TestScore_PredictorShape(t *testing.T) {
	cfg := testConfig(t, vcfHeader+"chr1\t11\t.\tG\tA\t.\t.\t.\n")
	cfg.Predict.Workers = 1
	r, err := New(cfg)
	require.NoError(t, err)

	// The second chunk comes back one feature wider than the first.
	calls := 0
	p := predict.Func{Fn: func(_ context.Context, seqs []string) ([][]float64, error) {
		calls++
		out := make([][]float64, len(seqs))
		for i := range out {
			out[i] = make([]float64, calls)
		}
		return out, nil
	}}

	_, err = r.Score(context.Background(), p)
	var se *delta.ShapeError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, 3, se.Row)
}

func TestScore_UnnamedFeatures(t *testing.T) {
	cfg := testConfig(t, vcfHeader+"chr1\t11\t.\tG\tA\t.\t.\t.\n")
	r, err := New(cfg)
	require.NoError(t, err)

	p := predict.Func{Fn: func(_ context.Context, seqs []string) ([][]float64, error) {
		out := make([][]float64, len(seqs))
		for i, s := range seqs {
			out[i] = []float64{float64(strings.Count(s, "A")), 0}
		}
		return out, nil
	}}
	res, err := r.Score(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"feature_0", "feature_1"}, res.Features)
}

func TestLoadGenome_FilterAndSnapshot(t *testing.T) {
	cfg := testConfig(t, vcfHeader)
	cfg.Chroms = []string{"chr3", "chr1", "chrUn"}
	cfg.SnapshotDir = filepath.Join(t.TempDir(), "snap")

	r, err := New(cfg)
	require.NoError(t, err)
	g, err := r.LoadGenome()
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1", "chr3"}, g.Names())

	snap := genome.NewSnapshot(cfg.SnapshotDir)
	fp, err := genome.StatFile(cfg.GenomePath)
	require.NoError(t, err)
	assert.True(t, snap.Valid(fp))

	// A second runner restores the full genome from the snapshot.
	cfg.Chroms = nil
	r2, err := New(cfg)
	require.NoError(t, err)
	g2, err := r2.LoadGenome()
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1", "chr2", "chr3"}, g2.Names())
}

func TestLoadVariants_Formats(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, vcfHeader)
	cfg.VariantsPath = writeFile(t, dir, "v.tsv", "chrom\tpos\tref\talt\nchr1\t10\tG\tA\n")

	r, err := New(cfg)
	require.NoError(t, err)
	vs, err := r.LoadVariants()
	require.NoError(t, err)
	assert.Equal(t, []variant.Variant{{Chrom: "chr1", Pos: 10, Ref: "G", Alt: "A"}}, vs)

	// Parquet input goes through DuckDB.
	store, err := duckdb.Open("")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.WriteDeltas([]string{"x"}, vs, [][]float64{{0}}))
	pq := filepath.Join(dir, "v.parquet")
	require.NoError(t, store.ExportParquet(duckdb.DeltaTable, pq))

	cfg.VariantsPath = pq
	r, err = New(cfg)
	require.NoError(t, err)
	got, err := r.LoadVariants()
	require.NoError(t, err)
	assert.Equal(t, vs, got)
}

func TestIntervals(t *testing.T) {
	cfg := testConfig(t, vcfHeader)
	r, err := New(cfg)
	require.NoError(t, err)

	defined, err := r.Intervals(KindDefined)
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{
		{Chrom: "chr1", Start: 0, End: 40},
		{Chrom: "chr2", Start: 0, End: 32},
		{Chrom: "chr3", Start: 0, End: 8},
	}, defined)

	unmasked, err := r.Intervals(KindUnmasked)
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{
		{Chrom: "chr1", Start: 0, End: 40},
		{Chrom: "chr2", Start: 0, End: 12},
		{Chrom: "chr2", Start: 20, End: 32},
		{Chrom: "chr3", Start: 0, End: 8},
	}, unmasked)

	all, err := r.Intervals(KindAll)
	require.NoError(t, err)
	assert.Equal(t, defined, all)

	_, err = r.Intervals("gaps")
	assert.Error(t, err)
}
