package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuniruyuni/yunic/internal/pipeline"
)

func newCompileCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "compile <ast.json>",
		Short: "Run analyzer -> monomorphizer -> codegen and write textual LLVM IR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			moduleName := strings.TrimSuffix(args[0], ".json")
			result, err := pipeline.Run(pipeline.ModeCompile, "yunic compile", prog, moduleName)
			if err != nil {
				return err
			}
			if result.Generator != nil {
				defer result.Generator.Dispose()
			}
			if pipeline.HasErrors(result.Diagnostics) {
				printDiagnostics(cmd.OutOrStdout(), result.Diagnostics)
				return fmt.Errorf("%d diagnostic(s)", len(result.Diagnostics))
			}

			ir := result.Generator.Module().String()
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), ir)
				return nil
			}
			return os.WriteFile(out, []byte(ir), 0644)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write LLVM IR to this file instead of stdout")
	return cmd
}
