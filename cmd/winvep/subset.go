package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/winvep/internal/genome"
	"github.com/inodb/winvep/internal/pipeline"
)

func newSubsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subset <output.fa[.gz]>",
		Short: "Write the genome restricted to --chroms as FASTA",
		Example: `  winvep subset --genome TAIR10.fa.gz --chroms 1,2,3,4,5 nuclear.fa.gz`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubset(args[0])
		},
	}
}

func runSubset(outputPath string) error {
	logger := newLogger()
	defer logger.Sync()

	r, err := pipeline.New(pipelineConfig("", ""))
	if err != nil {
		return usageError{err}
	}
	r.SetLogger(logger)

	g, err := r.LoadGenome()
	if err != nil {
		return err
	}
	if err := genome.WriteFile(outputPath, g); err != nil {
		return err
	}
	logger.Info("wrote genome",
		zap.String("path", outputPath),
		zap.Strings("chroms", g.Names()))
	return nil
}
