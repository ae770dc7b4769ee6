// Package pipeline provides a unified compilation pipeline for yunic: one
// Pipeline value owns one run's worth of state across the three phases the
// core performs over an already-decoded AST — Analyze, Monomorphize, and
// Generate — so the CLI and the test suite share a single entry point.
package pipeline

import (
	"fmt"
	"time"

	"github.com/yuniruyuni/yunic/internal/analyzer"
	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/codegen"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/manifest"
	"github.com/yuniruyuni/yunic/internal/mono"
)

// Mode determines how far a Run carries a program through the pipeline.
type Mode int

const (
	ModeCheck   Mode = iota // Analyze only
	ModeMangle              // Analyze + Monomorphize, manifest reporting only
	ModeCompile             // Analyze + Monomorphize + Generate
)

// Result carries every artifact a Run may produce. Which fields are
// populated depends on Mode and on whether analysis found errors: Program,
// Manifest and Generator are left nil if Diagnostics holds an error, since this
// compiler has no recovery/partial-codegen mode (§7 — analysis always
// visits every item before reporting, but generation never runs over a
// program known to be ill-typed or borrow-unsafe).
type Result struct {
	Diagnostics  []*diag.Report
	Program      *ast.Program // post-monomorphization program, for ModeMangle/ModeCompile
	Manifest     *manifest.Manifest
	Generator    *codegen.Generator // non-nil only for ModeCompile; caller must call Dispose
	PhaseTimings map[string]time.Duration
}

// HasErrors reports whether diags contains any diagnostic. Every Report
// this compiler constructs represents a hard failure — there is no
// warning severity — so a non-empty diagnostic list always means the run
// did not produce a usable artifact for the phases past the one that
// raised it.
func HasErrors(diags []*diag.Report) bool {
	return len(diags) > 0
}

// Pipeline owns the state accumulated across Analyze, Monomorphize, and
// Generate for one compilation run. It is not safe for concurrent use by
// two goroutines on the same run; independent runs should use independent
// Pipeline values.
type Pipeline struct {
	// Generator names the invoking tool (e.g. "yunic compile",
	// "yunic mangle"), stamped onto the compile manifest.
	Generator string

	driver *analyzer.Driver
	mono   *mono.Monomorphizer

	timings map[string]time.Duration
}

// New creates a Pipeline for one run, identified by generator (the CLI
// subcommand invoking it) for the manifest's Generator field.
func New(generator string) *Pipeline {
	return &Pipeline{Generator: generator, timings: make(map[string]time.Duration)}
}

// Analyze runs the semantic analyzer (typecheck, lifetime, borrow, and
// control-flow checks) over prog, accumulating diagnostics without
// aborting early so as many surface as possible in one run.
func (p *Pipeline) Analyze(prog *ast.Program) []*diag.Report {
	start := time.Now()
	p.driver = analyzer.New()
	diags := p.driver.Analyze(prog)
	p.timings["analyze"] = time.Since(start)
	return diags
}

// Monomorphize runs the monomorphizer over prog, returning the
// transformed, generics-free program. Analyze must have already been
// called (and have reported no errors) on an equivalent program; this
// method does not itself re-check types.
func (p *Pipeline) Monomorphize(prog *ast.Program) *ast.Program {
	start := time.Now()
	p.mono = mono.NewMonomorphizer()
	out := p.mono.Run(prog)
	p.timings["monomorphize"] = time.Since(start)
	return out
}

// Generate runs the code generator over prog (expected to already be
// monomorphized), returning a live Generator the caller owns and must
// Dispose.
func (p *Pipeline) Generate(prog *ast.Program, moduleName string) (*codegen.Generator, error) {
	start := time.Now()
	g := codegen.NewGenerator(moduleName)
	if err := g.GenerateProgram(prog); err != nil {
		g.Dispose()
		p.timings["generate"] = time.Since(start)
		return nil, err
	}
	p.timings["generate"] = time.Since(start)
	return g, nil
}

// Manifest assembles the compile manifest (§4.8) from whichever phases
// have run so far: an empty mono list and zero lifetime count if
// Monomorphize/Analyze haven't run, the accumulated borrow reports and
// lifetime count from Analyze otherwise.
func (p *Pipeline) Manifest() *manifest.Manifest {
	var borrowReports []*diag.Report
	lifetimeCount := 0
	if p.driver != nil {
		borrowReports = p.driver.BorrowReports()
		lifetimeCount = p.driver.LifetimeCount()
	}
	var mangled []string
	if p.mono != nil {
		mangled = p.mono.Mangled
	}
	return manifest.Build(p.Generator, mangled, lifetimeCount, borrowReports)
}

// PhaseTimings returns the wall-clock duration of each phase run so far,
// keyed by "analyze"/"monomorphize"/"generate".
func (p *Pipeline) PhaseTimings() map[string]time.Duration {
	out := make(map[string]time.Duration, len(p.timings))
	for k, v := range p.timings {
		out[k] = v
	}
	return out
}

// Run drives prog through every phase mode calls for, in one call,
// returning a Result. It is the entry point `cmd/yunic`'s check/mangle/
// compile subcommands each call with a different Mode.
//
// moduleName is only consulted for ModeCompile (it names the LLVM
// module); callers of ModeCheck/ModeMangle may pass "".
func Run(mode Mode, generator string, prog *ast.Program, moduleName string) (Result, error) {
	p := New(generator)
	result := Result{}

	diags := p.Analyze(prog)
	result.Diagnostics = diags
	if HasErrors(diags) {
		result.PhaseTimings = p.PhaseTimings()
		return result, nil
	}
	if mode == ModeCheck {
		result.PhaseTimings = p.PhaseTimings()
		return result, nil
	}

	rewritten := p.Monomorphize(prog)
	result.Program = rewritten
	result.Manifest = p.Manifest()
	if mode == ModeMangle {
		result.PhaseTimings = p.PhaseTimings()
		return result, nil
	}

	g, err := p.Generate(rewritten, moduleName)
	result.PhaseTimings = p.PhaseTimings()
	if err != nil {
		return result, fmt.Errorf("codegen: %w", err)
	}
	result.Generator = g
	return result, nil
}
