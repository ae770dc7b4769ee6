// Command yunic is the CLI front end for the compiler core: it reads a
// JSON-serialized AST (§4.11 — lexing and parsing are out of scope) and
// drives it through the analyzer, monomorphizer, and code generator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info, set by ldflags during build.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "yunic",
		Short: "yunic is the core compiler for the yuni systems language",
		Long: "yunic analyzes, monomorphizes, and compiles a JSON-serialized AST to LLVM IR.\n" +
			"It has no lexer or parser of its own: every subcommand's input is a JSON\n" +
			"document shaped like internal/astdecode's Program schema.",
	}

	root.AddCommand(newCheckCmd())
	root.AddCommand(newCompileCmd())
	root.AddCommand(newMangleCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "yunic %s (%s)\n", Version, Commit)
			return nil
		},
	}
}
