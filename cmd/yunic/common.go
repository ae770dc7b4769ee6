package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/astdecode"
	"github.com/yuniruyuni/yunic/internal/diag"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// loadProgram reads path and decodes it as a JSON AST document.
func loadProgram(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	prog, err := astdecode.DecodeProgram(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode AST: %w", err)
	}
	return prog, nil
}

// printDiagnostics renders each report to w, colorized the way the
// teacher's CLI colorizes its own error/warning/info summary
// (red=error, yellow=warning, cyan=info) — every Report this compiler
// raises is a hard failure, so all of them print in red here.
func printDiagnostics(w io.Writer, diags []*diag.Report) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s [%s/%s] %s\n", red("error"), yellow(d.Phase), cyan(d.Code), d.Message)
		if d.Span != nil {
			fmt.Fprintf(w, "  at %s:%d:%d\n", d.Span.Start.File, d.Span.Start.Line, d.Span.Start.Column)
		}
		if d.Fix != nil {
			fmt.Fprintf(w, "  suggested fix: %s\n", d.Fix.Suggestion)
		}
	}
}
