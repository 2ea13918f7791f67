// Package pipeline wires genome loading, variant input, window building,
// prediction and delta aggregation into a single scoring run.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/inodb/winvep/internal/predict"
	"github.com/inodb/winvep/internal/variant"
	"github.com/inodb/winvep/internal/window"
)

// Config is the explicit configuration of a scoring run.
type Config struct {
	GenomePath     string
	VariantsPath   string
	VariantsFormat string // vcf, tsv, csv or parquet; empty to detect from the file name
	Chroms         []string

	Window  window.Config
	Predict predict.Options

	// SnapshotDir caches the parsed genome as gob; empty disables it.
	SnapshotDir string

	// RequireUnmasked rejects variants whose window touches soft-masked or
	// undefined bases before any row is built.
	RequireUnmasked bool
}

// DefaultConfig returns the defaults used by the command line.
func DefaultConfig() Config {
	return Config{
		Window:  window.Config{Size: 1000, Strict: true},
		Predict: predict.Options{BatchSize: 512},
	}
}

// Validate checks the configuration before any file is opened.
func (c Config) Validate() error {
	var errs []error
	if c.GenomePath == "" {
		errs = append(errs, errors.New("genome path is required"))
	}
	if c.Window.Size <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %d", c.Window.Size))
	}
	if c.Predict.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch size must not be negative, got %d", c.Predict.BatchSize))
	}
	if c.Predict.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Predict.Workers))
	}
	switch c.VariantsFormat {
	case "", variant.FormatVCF, variant.FormatTSV, variant.FormatCSV, variant.FormatParquet:
	default:
		errs = append(errs, fmt.Errorf("unknown variant format %q", c.VariantsFormat))
	}
	return errors.Join(errs...)
}
