package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/winvep/internal/duckdb"
	"github.com/inodb/winvep/internal/output"
	"github.com/inodb/winvep/internal/pipeline"
)

func newIntervalsCmd() *cobra.Command {
	var (
		kind       string
		outputFile string
		parquet    string
	)

	cmd := &cobra.Command{
		Use:   "intervals",
		Short: "Write defined or unmasked genome intervals as BED",
		Long: `Scan every chromosome and write the maximal runs of defined bases
(ACGT in either case) or unmasked bases (uppercase ACGT).`,
		Example: `  winvep intervals --genome TAIR10.fa.gz > defined.bed
  winvep intervals --genome hg38.fa --kind unmasked --parquet unmasked.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntervals(kind, outputFile, parquet)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", pipeline.KindDefined, "Interval kind: all, defined or unmasked")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output BED file (default: stdout)")
	cmd.Flags().StringVar(&parquet, "parquet", "", "Export to this Parquet file instead of BED")

	return cmd
}

func runIntervals(kind, outputFile, parquet string) error {
	logger := newLogger()
	defer logger.Sync()

	cfg := pipelineConfig("", "")
	r, err := pipeline.New(cfg)
	if err != nil {
		return usageError{err}
	}
	r.SetLogger(logger)

	ivs, err := r.Intervals(kind)
	if err != nil {
		return err
	}

	if parquet != "" {
		store, err := duckdb.Open("")
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.WriteIntervals(kind, ivs); err != nil {
			return err
		}
		if err := store.ExportParquet(duckdb.IntervalTable, parquet); err != nil {
			return err
		}
		n, err := store.IntervalLength(kind)
		if err != nil {
			return err
		}
		logger.Info("exported intervals", zap.String("path", parquet), zap.Int64("bases", n))
		return nil
	}

	out, closeOut, err := createOutput(outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	w := output.NewBEDWriter(out)
	if err := w.WriteAll(ivs); err != nil {
		closeOut()
		return fmt.Errorf("write intervals: %w", err)
	}
	return errors.Join(w.Flush(), closeOut())
}
