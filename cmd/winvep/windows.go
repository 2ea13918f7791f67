package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/winvep/internal/output"
	"github.com/inodb/winvep/internal/pipeline"
)

func newWindowsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "windows <variants>",
		Short: "Write the four window rows of every variant",
		Long: `Validate variants and write their reference/alternate, forward/reverse
windows in block order, for models run outside winvep.`,
		Example: `  winvep windows --genome TAIR10.fa.gz --window-size 512 variants.vcf > rows.tsv`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			bindWindowFlags(cmd)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return runWindows(args[0], format, outputFile)
		},
	}

	addWindowFlags(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output TSV file (default: stdout)")

	return cmd
}

func runWindows(variantsPath, format, outputFile string) error {
	logger := newLogger()
	defer logger.Sync()

	r, err := pipeline.New(pipelineConfig(variantsPath, format))
	if err != nil {
		return usageError{err}
	}
	r.SetLogger(logger)

	batch, failures, err := r.Prepare()
	if err != nil {
		return err
	}

	out, closeOut, err := createOutput(outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	w := output.NewRowWriter(out)
	if err := w.WriteHeader(); err != nil {
		closeOut()
		return fmt.Errorf("write header: %w", err)
	}
	for row, err := range batch.Rows() {
		if err != nil {
			closeOut()
			return err
		}
		if err := w.Write(row); err != nil {
			closeOut()
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := errors.Join(w.Flush(), closeOut()); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logger.Info("wrote windows",
		zap.Int("rows", batch.Len()),
		zap.Int("skipped", len(failures)))
	return nil
}
