package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/winvep/internal/pipeline"
	"github.com/inodb/winvep/internal/predict"
	"github.com/inodb/winvep/internal/window"
)

// addWindowFlags registers the flags shared by commands that build windows.
func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "Variant format: vcf, tsv, csv, parquet (auto-detected if not specified)")
	cmd.Flags().Int("window-size", 1000, "Window width in bases")
	cmd.Flags().Bool("strict", true, "Abort on the first invalid variant instead of skipping it")
	cmd.Flags().Bool("require-unmasked", false, "Reject variants whose window overlaps soft-masked or undefined bases")
}

// bindWindowFlags binds the shared flags to viper keys. It runs in PreRunE
// so that only the executing command's flags are bound.
func bindWindowFlags(cmd *cobra.Command) {
	viper.BindPFlag("window_size", cmd.Flags().Lookup("window-size"))
	viper.BindPFlag("strict", cmd.Flags().Lookup("strict"))
	viper.BindPFlag("require_unmasked", cmd.Flags().Lookup("require-unmasked"))
}

// pipelineConfig assembles the run configuration from viper.
func pipelineConfig(variantsPath, format string) pipeline.Config {
	return pipeline.Config{
		GenomePath:     viper.GetString("genome"),
		VariantsPath:   variantsPath,
		VariantsFormat: format,
		Chroms:         viper.GetStringSlice("chroms"),
		Window: window.Config{
			Size:   viper.GetInt("window_size"),
			Strict: viper.GetBool("strict"),
		},
		Predict: predict.Options{
			BatchSize: viper.GetInt("batch_size"),
			Workers:   viper.GetInt("workers"),
		},
		SnapshotDir:     viper.GetString("snapshot_dir"),
		RequireUnmasked: viper.GetBool("require_unmasked"),
	}
}

// newPredictor returns the HTTP predictor when a URL is configured and the
// built-in composition baseline otherwise.
func newPredictor(logger *zap.Logger) predict.Predictor {
	url := viper.GetString("predictor.url")
	if url == "" {
		logger.Info("no predictor.url configured, using composition baseline")
		return predict.Composition{}
	}
	logger.Info("using remote predictor", zap.String("url", url))
	return predict.NewHTTP(url, viper.GetStringSlice("predictor.features"), viper.GetDuration("predictor.timeout"))
}

// createOutput opens path for writing, or stdout for "" and "-".
func createOutput(path string) (*os.File, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
