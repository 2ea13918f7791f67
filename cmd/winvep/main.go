// Package main provides the winvep command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks errors caused by bad arguments rather than bad data.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "winvep",
		Short: "Windowed variant effect scoring",
		Long: `winvep builds fixed-width reference and alternate sequence windows around
point variants, on both strands, feeds them to a sequence model and reports
per-variant alt-minus-ref feature deltas.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.winvep.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("genome", "", "Genome FASTA file (plain or gzip)")
	cmd.PersistentFlags().StringSlice("chroms", nil, "Restrict to these chromosomes")
	cmd.PersistentFlags().String("snapshot-dir", "", "Cache the parsed genome in this directory")
	viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("genome", cmd.PersistentFlags().Lookup("genome"))
	viper.BindPFlag("chroms", cmd.PersistentFlags().Lookup("chroms"))
	viper.BindPFlag("snapshot_dir", cmd.PersistentFlags().Lookup("snapshot-dir"))

	cmd.AddCommand(newScoreCmd())
	cmd.AddCommand(newWindowsCmd())
	cmd.AddCommand(newIntervalsCmd())
	cmd.AddCommand(newSubsetCmd())
	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads the config file and environment into viper.
func initConfig(cfgFile string) error {
	viper.SetDefault("window_size", 1000)
	viper.SetDefault("batch_size", 512)
	viper.SetDefault("workers", 0)
	viper.SetDefault("strict", true)
	viper.SetDefault("require_unmasked", false)
	viper.SetDefault("predictor.timeout", "5m")

	viper.SetEnvPrefix("WINVEP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.SetConfigFile(filepath.Join(home, ".winvep.yaml"))
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing default config file is fine; a missing --config is not.
		if cfgFile == "" && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// newLogger builds the console logger on stderr.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if viper.GetBool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
