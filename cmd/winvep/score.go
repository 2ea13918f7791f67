package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/winvep/internal/duckdb"
	"github.com/inodb/winvep/internal/output"
	"github.com/inodb/winvep/internal/pipeline"
)

func newScoreCmd() *cobra.Command {
	var (
		outputFile string
		dbPath     string
		parquet    string
	)

	cmd := &cobra.Command{
		Use:   "score <variants>",
		Short: "Score variants with a sequence model",
		Long: `Build reference and alternate windows on both strands for every variant,
predict them and write the strand-averaged alt-minus-ref deltas.

Without predictor.url the built-in composition baseline is used.`,
		Example: `  winvep score --genome TAIR10.fa.gz variants.vcf
  winvep score --genome hg38.fa --window-size 2000 -o deltas.tsv variants.tsv
  winvep score --genome hg38.fa --strict=false --parquet deltas.parquet variants.parquet`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			bindWindowFlags(cmd)
			viper.BindPFlag("batch_size", cmd.Flags().Lookup("batch-size"))
			viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
			viper.BindPFlag("predictor.url", cmd.Flags().Lookup("predictor-url"))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return runScore(cmd.Context(), args[0], format, outputFile, dbPath, parquet)
		},
	}

	addWindowFlags(cmd)
	cmd.Flags().Int("batch-size", 512, "Sequences per predictor call")
	cmd.Flags().Int("workers", 0, "Concurrent predictor calls (0 = number of CPUs)")
	cmd.Flags().String("predictor-url", "", "Model server URL")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output TSV file (default: stdout)")
	cmd.Flags().StringVar(&dbPath, "duckdb", "", "Also store deltas in this DuckDB database")
	cmd.Flags().StringVar(&parquet, "parquet", "", "Also export deltas to this Parquet file")

	return cmd
}

func runScore(ctx context.Context, variantsPath, format, outputFile, dbPath, parquet string) error {
	logger := newLogger()
	defer logger.Sync()

	cfg := pipelineConfig(variantsPath, format)
	r, err := pipeline.New(cfg)
	if err != nil {
		return usageError{err}
	}
	r.SetLogger(logger)

	res, err := r.Score(ctx, newPredictor(logger))
	if err != nil {
		return err
	}

	out, closeOut, err := createOutput(outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	w := output.NewDeltaWriter(out, res.Features)
	if err := w.WriteHeader(); err != nil {
		closeOut()
		return fmt.Errorf("write header: %w", err)
	}
	for i, v := range res.Variants {
		if err := w.Write(v, res.Deltas[i]); err != nil {
			closeOut()
			return fmt.Errorf("write deltas: %w", err)
		}
	}
	if err := errors.Join(w.Flush(), closeOut()); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	if dbPath != "" || parquet != "" {
		if err := storeDeltas(res, dbPath, parquet); err != nil {
			return err
		}
	}

	logger.Info("scored variants",
		zap.Int("count", len(res.Variants)),
		zap.Int("skipped", len(res.Failures)))
	return nil
}

// storeDeltas writes the delta table to DuckDB (in memory when dbPath is
// empty) and optionally exports it to Parquet.
func storeDeltas(res *pipeline.Result, dbPath, parquet string) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteDeltas(res.Features, res.Variants, res.Deltas); err != nil {
		return err
	}
	if parquet != "" {
		return store.ExportParquet(duckdb.DeltaTable, parquet)
	}
	return nil
}
