package duckdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/winvep/internal/interval"
	"github.com/inodb/winvep/internal/variant"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "winvep.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

var testVariants = []variant.Variant{
	{Chrom: "chr1", Pos: 10, ID: "rs1", Ref: "A", Alt: "G"},
	{Chrom: "chr2", Pos: 20, Ref: "C", Alt: "T"},
}

func TestWriteAndLookupDeltas(t *testing.T) {
	s := openInMemory(t)

	features := []string{"gc_content", "odd \"name\""}
	deltas := [][]float64{{0.25, -1}, {0, 0.5}}
	require.NoError(t, s.WriteDeltas(features, testVariants, deltas))

	got, err := s.LookupDelta("chr1", 10, "A", "G")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"gc_content": 0.25, "odd \"name\"": -1}, got)

	got, err = s.LookupDelta("chr2", 20, "C", "T")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got["odd \"name\""])

	got, err = s.LookupDelta("chr1", 11, "A", "G")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWriteDeltas_Replaces(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteDeltas([]string{"a"}, testVariants, [][]float64{{1}, {2}}))
	require.NoError(t, s.WriteDeltas([]string{"b", "c"}, testVariants[:1], [][]float64{{3, 4}}))

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM "+DeltaTable).Scan(&n))
	assert.Equal(t, 1, n)

	got, err := s.LookupDelta("chr1", 10, "A", "G")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"b": 3, "c": 4}, got)
}

func TestWriteDeltas_Errors(t *testing.T) {
	s := openInMemory(t)

	err := s.WriteDeltas([]string{"a"}, testVariants, [][]float64{{1}})
	assert.Error(t, err)

	err = s.WriteDeltas([]string{"a"}, testVariants, [][]float64{{1}, {2, 3}})
	assert.Error(t, err)

	err = s.WriteDeltas([]string{"POS"}, testVariants, [][]float64{{1}, {2}})
	assert.ErrorContains(t, err, "collides")
}

func TestWriteIntervals(t *testing.T) {
	s := openInMemory(t)

	ivs := []interval.Interval{{Chrom: "chr1", Start: 0, End: 10}, {Chrom: "chr2", Start: 5, End: 8}}
	require.NoError(t, s.WriteIntervals("defined", ivs))
	require.NoError(t, s.WriteIntervals("unmasked", ivs[:1]))

	n, err := s.IntervalLength("defined")
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)

	// Rewriting a kind replaces its rows.
	require.NoError(t, s.WriteIntervals("defined", ivs[1:]))
	n, err = s.IntervalLength("defined")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = s.IntervalLength("unmasked")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	n, err = s.IntervalLength("none")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParquetRoundTrip(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteDeltas([]string{"score"}, testVariants, [][]float64{{1}, {2}}))

	path := filepath.Join(t.TempDir(), "deltas.parquet")
	require.NoError(t, s.ExportParquet(DeltaTable, path))

	// The exported delta table carries the variant columns, so it reads
	// back as a variant table.
	got, err := s.LoadVariants(path)
	require.NoError(t, err)
	assert.Equal(t, testVariants, got)
}

func TestExportParquet_UnknownTable(t *testing.T) {
	s := openInMemory(t)
	err := s.ExportParquet("sqlite_master", filepath.Join(t.TempDir(), "x.parquet"))
	assert.Error(t, err)
}

func TestLoadVariants_CSVAndTSV(t *testing.T) {
	s := openInMemory(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "v.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Chromosome,Position,Ref,Alt\nchr1,10,A,G\nchr2,20,C,T\n"), 0644))
	got, err := s.LoadVariants(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []variant.Variant{
		{Chrom: "chr1", Pos: 10, Ref: "A", Alt: "G"},
		{Chrom: "chr2", Pos: 20, Ref: "C", Alt: "T"},
	}, got)

	tsvPath := filepath.Join(dir, "v.tsv")
	require.NoError(t, os.WriteFile(tsvPath, []byte("chrom\tpos\tid\tref\talt\nchr1\t10\trs1\tA\tG\n"), 0644))
	got, err = s.LoadVariants(tsvPath)
	require.NoError(t, err)
	assert.Equal(t, []variant.Variant{{Chrom: "chr1", Pos: 10, ID: "rs1", Ref: "A", Alt: "G"}}, got)
}

func TestLoadVariants_Errors(t *testing.T) {
	s := openInMemory(t)
	dir := t.TempDir()

	_, err := s.LoadVariants(filepath.Join(dir, "v.vcf"))
	assert.ErrorContains(t, err, "unsupported")

	path := filepath.Join(dir, "v.csv")
	require.NoError(t, os.WriteFile(path, []byte("chrom,pos,ref\nchr1,10,A\n"), 0644))
	_, err = s.LoadVariants(path)
	assert.ErrorContains(t, err, "missing required columns: alt")

	negPath := filepath.Join(dir, "neg.csv")
	require.NoError(t, os.WriteFile(negPath, []byte("chrom,pos,ref,alt\nchr1,-1,A,G\n"), 0644))
	_, err = s.LoadVariants(negPath)
	assert.ErrorContains(t, err, "invalid position")
}
