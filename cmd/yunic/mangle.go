package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuniruyuni/yunic/internal/pipeline"
)

func newMangleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mangle <ast.json>",
		Short: "Run the monomorphizer and print the compile manifest as deterministic JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			result, err := pipeline.Run(pipeline.ModeMangle, "yunic mangle", prog, "")
			if err != nil {
				return err
			}
			if pipeline.HasErrors(result.Diagnostics) {
				printDiagnostics(cmd.OutOrStdout(), result.Diagnostics)
				return fmt.Errorf("%d diagnostic(s)", len(result.Diagnostics))
			}

			data, err := result.Manifest.ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
