package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuniruyuni/yunic/internal/pipeline"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <ast.json>",
		Short: "Run the analyzer only and print accumulated diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			result, err := pipeline.Run(pipeline.ModeCheck, "yunic check", prog, "")
			if err != nil {
				return err
			}

			if pipeline.HasErrors(result.Diagnostics) {
				printDiagnostics(cmd.OutOrStdout(), result.Diagnostics)
				return fmt.Errorf("%d diagnostic(s)", len(result.Diagnostics))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
