// Package repl implements an interactive shell for exploring the compiler
// core one declaration at a time: it accepts a JSON AST item per prompt
// (the same wire format internal/astdecode parses for the CLI and test
// fixtures), runs it through the full Analyze -> Monomorphize -> Generate
// pipeline, and prints the resulting mangled name(s) and emitted LLVM IR.
package repl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/astdecode"
	"github.com/yuniruyuni/yunic/internal/pipeline"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL is a read-eval-print loop over the compiler core.
type REPL struct {
	history []string
	version string
}

// New creates a REPL instance.
func New() *REPL { return NewWithVersion("") }

// NewWithVersion creates a REPL stamped with the given version string, for
// the welcome banner.
func NewWithVersion(version string) *REPL {
	if version == "" {
		version = "dev"
	}
	return &REPL{version: version}
}

// Start begins the REPL session, reading from in and writing to out until
// EOF or a :quit command.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".yunic_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("yunic repl"), bold(r.version))
	fmt.Fprintln(out, dim("Paste a JSON AST item (FuncDecl/MethodDecl/TypeDef) or a full Program."))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit."))
	fmt.Fprintln(out)

	line.SetCompleter(func(in string) (c []string) {
		if strings.HasPrefix(in, ":") {
			for _, cmd := range []string{":help", ":quit", ":history", ":clear"} {
				if strings.HasPrefix(cmd, in) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	for {
		input, err := line.Prompt("yunic> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if r.handleCommand(input, out) {
				break
			}
			continue
		}

		r.processItem(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand runs a `:`-prefixed command, returning true if the REPL
// should exit.
func (r *REPL) handleCommand(input string, out io.Writer) bool {
	switch {
	case input == ":quit" || input == ":q" || input == ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case input == ":help":
		r.printHelp(out)
	case input == ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "%3d  %s\n", i+1, h)
		}
	case input == ":clear":
		r.history = nil
		fmt.Fprintln(out, dim("History cleared."))
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", yellow("Warning"), input)
	}
	return false
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintln(out, "  :help      show this message")
	fmt.Fprintln(out, "  :history   show input history")
	fmt.Fprintln(out, "  :clear     clear input history")
	fmt.Fprintln(out, "  :quit      exit the REPL")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Any other input is decoded as a JSON AST item (or a full Program object)")
	fmt.Fprintln(out, "and run through the compiler: mangled name(s) and emitted IR are printed.")
}

// processItem decodes input as either a full Program or a single item
// wrapped in one, runs it through the pipeline in compile mode, and
// prints the resulting mangled names and LLVM IR.
func (r *REPL) processItem(input string, out io.Writer) {
	prog, err := decodeProgramOrItem(input)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}

	result, err := pipeline.Run(pipeline.ModeCompile, "yunic repl", prog, "repl")
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	defer func() {
		if result.Generator != nil {
			result.Generator.Dispose()
		}
	}()

	if pipeline.HasErrors(result.Diagnostics) {
		for _, d := range result.Diagnostics {
			fmt.Fprintf(out, "%s [%s] %s\n", red("error"), cyan(d.Code), d.Message)
		}
		return
	}

	if result.Manifest != nil && len(result.Manifest.Mono) > 0 {
		fmt.Fprintf(out, "%s %s\n", dim("mangled:"), strings.Join(result.Manifest.Mono, ", "))
	}
	if result.Generator != nil {
		fmt.Fprintln(out, result.Generator.Module().String())
	}
}

// decodeProgramOrItem accepts either `{"type": "Program", ...}` or a bare
// item object (`{"type": "FuncDecl", ...}`), wrapping the latter in a
// single-item Program so the pipeline always sees a whole program.
func decodeProgramOrItem(input string) (*ast.Program, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(input), &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if probe.Type == "Program" {
		return astdecode.DecodeProgram([]byte(input))
	}
	wrapped := fmt.Sprintf(`{"type":"Program","package":"repl","items":[%s]}`, input)
	return astdecode.DecodeProgram([]byte(wrapped))
}
