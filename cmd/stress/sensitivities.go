package main

import (
	"github.com/spf13/cobra"

	"github.com/aristath/sentinel-stress/internal/domain"
)

func newSensitivitiesCmd(global *globalOptions) *cobra.Command {
	var input, output, format string

	cmd := &cobra.Command{
		Use:   "sensitivities",
		Short: "Classify a portfolio and print per-position factor sensitivities",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Accepts either a bare portfolio or a full run input
			var in struct {
				domain.Portfolio `yaml:",inline"`
				Nested           *domain.Portfolio `json:"portfolio" yaml:"portfolio"`
			}
			if err := readInput(input, cmd.InOrStdin(), &in); err != nil {
				return err
			}
			portfolio := in.Portfolio
			if in.Nested != nil {
				portfolio = *in.Nested
			}

			engine, err := global.engine(global.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			positions, err := engine.Sensitivities(portfolio)
			if err != nil {
				return err
			}

			data, err := encode(format, map[string]interface{}{
				"base_currency":  portfolio.Base(),
				"tables_version": engine.Calculator().Tables().Version,
				"positions":      positions,
			})
			if err != nil {
				return err
			}
			return writeOutput(output, cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file (JSON or YAML, - for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, yaml")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
