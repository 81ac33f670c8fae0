package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aristath/sentinel-stress/internal/domain"
	"github.com/aristath/sentinel-stress/internal/modules/stress"
)

type runOptions struct {
	input   string
	output  string
	format  string
	verbose bool
	check   bool
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a stress scenario against a portfolio",
		Long: `Run a stress scenario against a portfolio and write the rounded result.

Examples:
  # Market decline against a JSON portfolio, result to stdout
  stress run --input portfolio.json

  # YAML input, result file, summary on stderr and invariant check
  stress run --input scenario.yaml --output out/result.json --verbose --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Input file (JSON or YAML, - for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json, yaml")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a summary to stderr")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Fail when the result violates an accounting invariant")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runStress(cmd *cobra.Command, global *globalOptions, opts *runOptions) error {
	start := time.Now()
	log := global.logger(cmd.ErrOrStderr())

	var input domain.RunInput
	if err := readInput(opts.input, cmd.InOrStdin(), &input); err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return err
	}

	engine, err := global.engine(log)
	if err != nil {
		return err
	}

	result, err := engine.Run(input.Portfolio, input.Scenario)
	if err != nil {
		return err
	}

	if err := stress.CheckInvariants(result); err != nil {
		if opts.check {
			return err
		}
		log.Warn().Err(err).Msg("Stress result failed invariant check")
	}

	rounded := result.Rounded()
	envelope := map[string]interface{}{
		"data": rounded,
		"metadata": map[string]interface{}{
			"run_id":         uuid.NewString(),
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"portfolio_id":   input.Portfolio.ID,
			"portfolio_name": input.Portfolio.Name,
			"scenario_id":    input.Scenario.ID,
			"scenario_name":  input.Scenario.Name,
			"asset_count":    len(input.Portfolio.Positions),
			"tables_version": result.TablesVersion,
			"duration_ms":    time.Since(start).Milliseconds(),
		},
	}

	data, err := encode(opts.format, envelope)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.output, cmd.OutOrStdout(), data); err != nil {
		return err
	}

	if opts.verbose {
		printSummary(cmd.ErrOrStderr(), input.Scenario, rounded)
	}
	return nil
}

func printSummary(w io.Writer, scenario domain.Scenario, r *stress.Result) {
	name := scenario.Name
	if name == "" {
		name = scenario.ID
	}

	fmt.Fprintf(w, "Scenario:        %s\n", name)
	fmt.Fprintf(w, "Portfolio value: %.2f\n", r.PortfolioValue)
	fmt.Fprintf(w, "Stressed value:  %.2f\n", r.StressedValue)
	fmt.Fprintf(w, "Total impact:    %.2f (%.4f%%)\n", r.TotalImpact, r.TotalImpactPercent)

	fmt.Fprintln(w, "\nAsset classes:")
	for _, ac := range r.AssetClassImpacts {
		fmt.Fprintf(w, "  %-12s %3d  %12.2f  %9.4f%%\n", ac.AssetClass, ac.PositionCount, ac.ImpactValue, ac.ImpactPercent)
	}

	fmt.Fprintln(w, "\nFactor attribution:")
	for _, f := range domain.Factors {
		fmt.Fprintf(w, "  %-12s %12.2f\n", f, r.FactorAttribution[f])
	}

	fmt.Fprintf(w, "\nConcentration %.4f  Diversification %.4f  Tail risk %.4f%%\n",
		r.RiskMetrics.Concentration, r.RiskMetrics.Diversification, r.RiskMetrics.TailRisk)
}
