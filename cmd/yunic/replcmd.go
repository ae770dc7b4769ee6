package main

import (
	"github.com/spf13/cobra"

	"github.com/yuniruyuni/yunic/internal/repl"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive shell for exploring mangled names and emitted IR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := repl.NewWithVersion(Version)
			r.Start(cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
	}
}
