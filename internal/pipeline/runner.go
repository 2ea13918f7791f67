package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/winvep/internal/delta"
	"github.com/inodb/winvep/internal/duckdb"
	"github.com/inodb/winvep/internal/genome"
	"github.com/inodb/winvep/internal/interval"
	"github.com/inodb/winvep/internal/predict"
	"github.com/inodb/winvep/internal/variant"
	"github.com/inodb/winvep/internal/window"
)

// Result is the outcome of a scoring run.
type Result struct {
	Features []string
	Variants []variant.Variant // scored variants, in input order
	Indices  []int             // input index of each scored variant
	Deltas   [][]float64       // one row per scored variant
	Failures []error           // variants skipped in lenient mode
}

// Runner executes scoring runs for one configuration.
type Runner struct {
	cfg    Config
	logger *zap.Logger

	genome *genome.Genome
}

// New validates cfg and creates a runner.
func New(cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Runner{cfg: cfg, logger: zap.NewNop()}, nil
}

// SetLogger sets the logger for progress and skipped-variant reports.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// LoadGenome parses the genome, or restores it from the snapshot directory
// when the snapshot matches the FASTA file. The result is restricted to
// Config.Chroms when set and memoized for the runner's lifetime.
func (r *Runner) LoadGenome() (*genome.Genome, error) {
	if r.genome != nil {
		return r.genome, nil
	}

	g, err := r.loadGenome()
	if err != nil {
		return nil, err
	}
	if len(r.cfg.Chroms) > 0 {
		g = g.Filter(r.cfg.Chroms)
		if g.Count() < len(r.cfg.Chroms) {
			r.logger.Warn("some requested chromosomes are not in the genome",
				zap.Strings("requested", r.cfg.Chroms),
				zap.Strings("kept", g.Names()))
		}
	}
	r.logger.Info("genome ready",
		zap.Int("chromosomes", g.Count()),
		zap.Int64("bases", g.TotalLength()))
	r.genome = g
	return g, nil
}

func (r *Runner) loadGenome() (*genome.Genome, error) {
	path := r.cfg.GenomePath
	if r.cfg.SnapshotDir == "" {
		return r.parseGenome(path)
	}

	fp, err := genome.StatFile(path)
	if err != nil {
		return nil, fmt.Errorf("stat genome: %w", err)
	}

	snap := genome.NewSnapshot(r.cfg.SnapshotDir)
	if snap.Valid(fp) {
		start := time.Now()
		g, err := snap.Load()
		if err == nil {
			r.logger.Debug("loaded genome snapshot",
				zap.String("path", r.cfg.SnapshotDir),
				zap.Duration("elapsed", time.Since(start)))
			return g, nil
		}
		r.logger.Warn("genome snapshot unreadable, reparsing", zap.Error(err))
		snap.Clear()
	}

	g, err := r.parseGenome(path)
	if err != nil {
		return nil, err
	}
	if err := snap.Write(g, fp); err != nil {
		r.logger.Warn("could not write genome snapshot", zap.Error(err))
	}
	return g, nil
}

func (r *Runner) parseGenome(path string) (*genome.Genome, error) {
	start := time.Now()
	g, err := genome.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load genome: %w", err)
	}
	r.logger.Debug("parsed genome",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)))
	return g, nil
}

// LoadVariants reads the variant table. Parquet goes through DuckDB, the
// text formats through the streaming parsers.
func (r *Runner) LoadVariants() ([]variant.Variant, error) {
	path := r.cfg.VariantsPath
	if path == "" {
		return nil, errors.New("variants path is required")
	}
	format := r.cfg.VariantsFormat
	if format == "" {
		format = variant.DetectFormat(path)
	}

	var (
		variants []variant.Variant
		err      error
	)
	if format == variant.FormatParquet {
		variants, err = loadVariantsDuckDB(path)
	} else {
		variants, err = loadVariantsText(path, format)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Info("loaded variants",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("count", len(variants)))
	return variants, nil
}

func loadVariantsText(path, format string) ([]variant.Variant, error) {
	p, err := variant.Open(path, format)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return variant.ReadAll(p)
}

func loadVariantsDuckDB(path string) ([]variant.Variant, error) {
	store, err := duckdb.Open("")
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadVariants(path)
}

// Builder returns a window builder over the loaded genome, masked to the
// unmasked intervals when RequireUnmasked is set.
func (r *Runner) Builder() (*window.Builder, error) {
	g, err := r.LoadGenome()
	if err != nil {
		return nil, err
	}
	b, err := window.New(g, r.cfg.Window)
	if err != nil {
		return nil, err
	}
	b.SetLogger(r.logger)
	if r.cfg.RequireUnmasked {
		idx := interval.NewIndex(interval.Unmasked(g))
		r.logger.Debug("built unmasked index", zap.Int64("bases", idx.TotalLength()))
		b.SetMask(idx)
	}
	return b, nil
}

// Prepare loads the genome and the variants and validates every variant.
func (r *Runner) Prepare() (*window.Batch, []error, error) {
	variants, err := r.LoadVariants()
	if err != nil {
		return nil, nil, err
	}
	b, err := r.Builder()
	if err != nil {
		return nil, nil, err
	}
	batch, failures, err := b.Prepare(variants)
	if err != nil {
		return nil, nil, err
	}
	if len(failures) > 0 {
		r.logger.Warn("skipped variants",
			zap.Int("count", len(failures)),
			zap.Int("kept", batch.N()))
	}
	return batch, failures, nil
}

// Score runs the full pipeline with predictor p.
func (r *Runner) Score(ctx context.Context, p predict.Predictor) (*Result, error) {
	batch, failures, err := r.Prepare()
	if err != nil {
		return nil, err
	}
	return r.ScoreBatch(ctx, batch, failures, p)
}

// ScoreBatch predicts a prepared batch and aggregates the deltas.
func (r *Runner) ScoreBatch(ctx context.Context, batch *window.Batch, failures []error, p predict.Predictor) (*Result, error) {
	start := time.Now()
	predictions, err := predict.Run(ctx, batch, p, r.cfg.Predict)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	r.logger.Debug("predicted rows",
		zap.Int("rows", len(predictions)),
		zap.Duration("elapsed", time.Since(start)))

	deltas, err := delta.Aggregate(predictions, batch.N())
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	width := 0
	if len(deltas) > 0 {
		width = len(deltas[0])
	}
	features := p.Features()
	if width > 0 {
		features = predict.FeatureNames(p, width)
		if len(features) != width {
			return nil, fmt.Errorf("predictor names %d features but returned %d", len(features), width)
		}
	}

	indices := make([]int, batch.N())
	for i := range indices {
		indices[i] = batch.Index(i)
	}

	return &Result{
		Features: features,
		Variants: batch.Variants(),
		Indices:  indices,
		Deltas:   deltas,
		Failures: failures,
	}, nil
}
