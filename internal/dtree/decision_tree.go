// Package dtree compiles a match expression's arms into a decision tree
// (§4.10/§4.11): a matrix-based pattern compiler that avoids re-testing
// the same sub-value across multiple arms. It operates directly on
// internal/ast's pattern and expression grammar — this compiler's
// original inspiration worked over a separate intermediate
// representation, but the specification the code generator follows has
// no such layer, so the matrix here is built straight from the surface
// AST.
package dtree

import (
	"fmt"

	"github.com/yuniruyuni/yunic/internal/ast"
)

// DecisionTree is the compiled output: a tree of Switch/Leaf/Fail nodes.
// internal/codegen does not consume it; it lowers match arms on its own.
type DecisionTree interface {
	isDecisionTree()
	String() string
}

// LeafNode is a successful match: the matrix row's guard (if any) and
// body to evaluate.
type LeafNode struct {
	ArmIndex int
	Body     ast.Expr
	Guard    ast.Expr
}

func (l *LeafNode) isDecisionTree() {}
func (l *LeafNode) String() string  { return fmt.Sprintf("Leaf(arm=%d)", l.ArmIndex) }

// FailNode means no arm matched (a non-exhaustive match falls through to
// this at runtime).
type FailNode struct{}

func (f *FailNode) isDecisionTree() {}
func (f *FailNode) String() string  { return "Fail" }

// SwitchNode tests the value reached by Path (a sequence of projection
// indices from the scrutinee) against each key in Cases, falling back to
// Default on no match.
type SwitchNode struct {
	Path    []int
	Cases   map[interface{}]DecisionTree
	Default DecisionTree
}

func (s *SwitchNode) isDecisionTree() {}
func (s *SwitchNode) String() string {
	return fmt.Sprintf("Switch(path=%v, cases=%d, default=%v)", s.Path, len(s.Cases), s.Default != nil)
}

// Compiler compiles one match expression's arms into a DecisionTree.
type Compiler struct {
	arms []ast.MatchArm
}

// NewCompiler creates a compiler for arms, in source order.
func NewCompiler(arms []ast.MatchArm) *Compiler {
	return &Compiler{arms: arms}
}

type matchRow struct {
	patterns []ast.Pattern
	armIndex int
	guard    ast.Expr
	body     ast.Expr
}

// Compile builds the decision tree for the compiler's arms.
func (c *Compiler) Compile() DecisionTree {
	matrix := make([]matchRow, len(c.arms))
	for i, arm := range c.arms {
		matrix[i] = matchRow{patterns: []ast.Pattern{arm.Pattern}, armIndex: i, guard: arm.Guard, body: arm.Body}
	}
	return c.compileMatrix(matrix, nil)
}

func (c *Compiler) compileMatrix(matrix []matchRow, path []int) DecisionTree {
	if len(matrix) == 0 {
		return &FailNode{}
	}
	if isDefaultRow(matrix[0]) || len(matrix[0].patterns) == 0 {
		return &LeafNode{ArmIndex: matrix[0].armIndex, Body: matrix[0].body, Guard: matrix[0].guard}
	}
	return c.buildSwitch(matrix, path, 0)
}

func isDefaultRow(row matchRow) bool {
	for _, pat := range row.patterns {
		switch pat.(type) {
		case *ast.WildcardPattern, *ast.IdentifierPattern:
			continue
		default:
			return false
		}
	}
	return true
}

// caseKey is the discriminator a SwitchNode branches on: an enum variant
// name, or a literal's rendered value.
func caseKey(pat ast.Pattern) (interface{}, bool) {
	switch p := pat.(type) {
	case *ast.EnumVariantPattern:
		return p.EnumType + "::" + p.Variant, true
	case *ast.LiteralPattern:
		return literalKey(p.Value), true
	default:
		return nil, false
	}
}

func literalKey(e ast.Expr) interface{} {
	switch v := e.(type) {
	case *ast.IntLit:
		return v.Value
	case *ast.FloatLit:
		return v.Value
	case *ast.BoolLit:
		return v.Value
	case *ast.StringLit:
		return v.Value
	default:
		return e.String()
	}
}

// subPatterns returns pat's immediate children, used to widen the
// pattern matrix by one column per child when pat is specialized.
func subPatterns(pat ast.Pattern) []ast.Pattern {
	switch p := pat.(type) {
	case *ast.TuplePattern:
		return p.Elements
	case *ast.EnumVariantPattern:
		switch p.Kind {
		case ast.VariantTuple:
			return p.Elements
		case ast.VariantStruct:
			out := make([]ast.Pattern, len(p.Fields))
			for i, f := range p.Fields {
				out[i] = f.Pattern
			}
			return out
		default:
			return nil
		}
	case *ast.StructPattern:
		out := make([]ast.Pattern, len(p.Fields))
		for i, f := range p.Fields {
			out[i] = f.Pattern
		}
		return out
	default:
		return nil
	}
}

func (c *Compiler) buildSwitch(matrix []matchRow, path []int, colIndex int) DecisionTree {
	cases := make(map[interface{}][]matchRow)
	var order []interface{}
	var defaultRows []matchRow

	for _, row := range matrix {
		if colIndex >= len(row.patterns) {
			defaultRows = append(defaultRows, row)
			continue
		}
		pat := row.patterns[colIndex]
		key, ok := caseKey(pat)
		if !ok {
			if _, isDefault := pat.(*ast.WildcardPattern); isDefault {
				defaultRows = append(defaultRows, row)
				continue
			}
			if _, isDefault := pat.(*ast.IdentifierPattern); isDefault {
				defaultRows = append(defaultRows, row)
				continue
			}
			// Tuple/struct patterns always match structurally: specialize
			// in place by expanding into their sub-patterns.
			defaultRows = append(defaultRows, expandRow(row, colIndex))
			continue
		}
		if _, seen := cases[key]; !seen {
			order = append(order, key)
		}
		cases[key] = append(cases[key], row)
	}

	if len(cases) == 0 {
		if len(defaultRows) == 0 {
			return &FailNode{}
		}
		return c.compileMatrix(defaultRows, path)
	}

	node := &SwitchNode{Path: append(append([]int{}, path...), colIndex), Cases: make(map[interface{}]DecisionTree)}
	for _, key := range order {
		rows := cases[key]
		specialized := make([]matchRow, len(rows))
		for i, r := range rows {
			specialized[i] = expandRow(r, colIndex)
		}
		node.Cases[key] = c.compileMatrix(specialized, node.Path)
	}
	if len(defaultRows) > 0 {
		node.Default = c.compileMatrix(defaultRows, node.Path)
	} else {
		node.Default = &FailNode{}
	}
	return node
}

// expandRow removes column colIndex from row, splicing in that pattern's
// sub-patterns (if any) in its place so nested constructors get tested
// one projection at a time.
func expandRow(row matchRow, colIndex int) matchRow {
	newPatterns := make([]ast.Pattern, 0, len(row.patterns))
	for i, pat := range row.patterns {
		if i != colIndex {
			newPatterns = append(newPatterns, pat)
			continue
		}
		newPatterns = append(newPatterns, subPatterns(pat)...)
	}
	return matchRow{patterns: newPatterns, armIndex: row.armIndex, guard: row.guard, body: row.body}
}

// CanCompileToTree reports whether arms contains enough testable
// (literal/enum-variant) patterns that decision-tree compilation avoids
// redundant re-testing compared to a naive if/else-if chain.
func CanCompileToTree(arms []ast.MatchArm) bool {
	count := 0
	for _, arm := range arms {
		if _, ok := caseKey(arm.Pattern); ok {
			count++
		}
	}
	return count >= 2
}
