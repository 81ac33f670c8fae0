package main

import (
	"github.com/spf13/cobra"
)

func newTablesCmd(global *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the coefficient tables in use as YAML",
		Long: `Print the coefficient tables in use as YAML. The output can be edited
and passed back with --tables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := global.engine(global.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			data, err := engine.Calculator().Tables().YAML()
			if err != nil {
				return err
			}
			return writeOutput(output, cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
