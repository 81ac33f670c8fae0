package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aristath/sentinel-stress/internal/config"
	"github.com/aristath/sentinel-stress/internal/di"
	"github.com/aristath/sentinel-stress/internal/modules/stress"
	"github.com/aristath/sentinel-stress/pkg/logger"
)

const version = "v1.0.0"

// globalOptions are shared by every subcommand
type globalOptions struct {
	logLevel      string
	tablesPath    string
	referencePath string
	volAmp        float64
	workers       int
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "stress",
		Short:   "Portfolio stress testing and risk attribution",
		Version: version,
		Long: `Applies hypothetical market scenarios to a portfolio and reports the
projected impact per position, per asset class and per risk factor.

Input files are JSON or YAML (by extension) holding a portfolio, a scenario
and optional run options. Use "-" to read from stdin.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	flags.StringVar(&opts.tablesPath, "tables", "", "YAML coefficient tables overriding the built-in set")
	flags.StringVar(&opts.referencePath, "reference", "", "YAML symbol reference data")
	flags.Float64Var(&opts.volAmp, "vol-amplification", stress.DefaultVolatilityAmplification, "Volatility amplification coefficient")
	flags.IntVar(&opts.workers, "workers", 0, "Worker pool size for large portfolios (0 = number of CPUs)")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newTablesCmd(opts),
		newSensitivitiesCmd(opts),
	)

	return rootCmd
}

func (o *globalOptions) logger(stderr io.Writer) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  o.logLevel,
		Pretty: true,
		Output: stderr,
	})
}

func (o *globalOptions) engine(log zerolog.Logger) (*stress.Engine, error) {
	return di.NewEngine(&config.Config{
		TablesPath:    o.tablesPath,
		ReferencePath: o.referencePath,
		Engine: config.EngineConfig{
			VolatilityAmplification: o.volAmp,
			Workers:                 o.workers,
			ParallelThreshold:       stress.DefaultParallelThreshold,
		},
	}, log)
}

// readInput decodes a JSON or YAML file into dst. "-" reads JSON or YAML from stdin.
func readInput(path string, stdin io.Reader, dst interface{}) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if isYAML(path, data) {
		if err := yaml.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("failed to parse YAML input: %w", err)
		}
		return nil
	}
	if err := decodeJSON(data, dst); err != nil {
		return fmt.Errorf("failed to parse JSON input: %w", err)
	}
	return nil
}

func isYAML(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	case ".json":
		return false
	}
	trimmed := strings.TrimSpace(string(data))
	return !strings.HasPrefix(trimmed, "{")
}

// writeOutput writes data to path, or to stdout when path is empty or "-"
func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
