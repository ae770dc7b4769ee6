// Package e2e drives the compiler's literal-input/expected-output scenarios
// (§8) from YAML fixtures, the way the teacher's cmd/ailang eval-suite
// discovers and runs benchmarks/*.yaml: each scenario here names a JSON AST
// program and the diagnostics/IR/manifest shape it must produce.
package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/yuniruyuni/yunic/internal/astdecode"
	"github.com/yuniruyuni/yunic/internal/pipeline"
)

// Expect is the subset of a Run's Result a Scenario checks. Every field is
// optional: a zero value means "don't check this".
type Expect struct {
	Diagnostics []string `yaml:"diagnostics"`  // expected diag codes, in order
	IRContains  []string `yaml:"ir_contains"`  // substrings the emitted IR must contain
	Mono        []string `yaml:"mono"`         // names expected in the manifest's Mono list
}

// Scenario is one YAML fixture: an id/description pair, the JSON AST program
// to run (inline, since every scenario is small enough to embed), the mode
// to run it in, and the expectation to check the result against.
type Scenario struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Mode        string `yaml:"mode"` // "check" | "mangle" | "compile"
	AST         string `yaml:"ast"`
	Expect      Expect `yaml:"expect"`
}

// modeByName maps a Scenario's Mode string to a pipeline.Mode.
func modeByName(name string) (pipeline.Mode, error) {
	switch name {
	case "check":
		return pipeline.ModeCheck, nil
	case "mangle":
		return pipeline.ModeMangle, nil
	case "compile":
		return pipeline.ModeCompile, nil
	default:
		return 0, fmt.Errorf("unknown scenario mode %q", name)
	}
}

// LoadSuites reads every *.yaml file in dir and decodes it as a Scenario,
// sorted by filename so results are stable across filesystems.
func LoadSuites(dir string) ([]Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]Scenario, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var s Scenario
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Outcome is what Run produced, for a test to assert against Scenario.Expect.
type Outcome struct {
	DiagnosticCodes []string
	IR              string
	Mono            []string
}

// Run decodes s's AST, drives it through the pipeline at s's Mode, and
// returns the observable outcome. Run disposes any live codegen.Generator
// itself, since Outcome only keeps the rendered IR text.
func Run(s Scenario) (Outcome, error) {
	mode, err := modeByName(s.Mode)
	if err != nil {
		return Outcome{}, err
	}

	prog, err := astdecode.DecodeProgram([]byte(s.AST))
	if err != nil {
		return Outcome{}, fmt.Errorf("decoding scenario %s AST: %w", s.ID, err)
	}

	result, err := pipeline.Run(mode, "yunic e2e", prog, s.ID)
	if err != nil {
		return Outcome{}, err
	}
	if result.Generator != nil {
		defer result.Generator.Dispose()
	}

	out := Outcome{}
	for _, d := range result.Diagnostics {
		out.DiagnosticCodes = append(out.DiagnosticCodes, d.Code)
	}
	if result.Manifest != nil {
		out.Mono = result.Manifest.Mono
	}
	if result.Generator != nil {
		out.IR = result.Generator.Module().String()
	}
	return out, nil
}
