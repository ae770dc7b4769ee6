package analyzer

import "github.com/yuniruyuni/yunic/internal/ast"

// MarkTailCalls implements §4.6: walks fn's body and sets TailCall.IsTail
// on every CallExpr that is both self-recursive (its callee names fn) and
// sits in tail position.
func MarkTailCalls(fn *ast.FuncDecl) {
	if fn.Body == nil {
		return
	}
	markBlock(fn.Body, fn.Name, true)
}

func markBlock(block *ast.Block, fnName string, tail bool) {
	if block == nil || len(block.Stmts) == 0 {
		return
	}
	last := block.Stmts[len(block.Stmts)-1]
	switch s := last.(type) {
	case *ast.ReturnStmt:
		if s.Value != nil {
			markExpr(s.Value, fnName, true)
		}
	case *ast.ExprStmt:
		markExpr(s.Expr, fnName, tail)
	}
}

// markExpr marks expr as a tail call site if it is itself a
// self-recursive call in tail position, and recurses into the
// sub-expressions that the grammar defines as tail positions relative to
// expr.
func markExpr(expr ast.Expr, fnName string, tail bool) {
	if !tail {
		return
	}
	switch e := expr.(type) {
	case *ast.CallExpr:
		if id, ok := e.Callee.(*ast.Identifier); ok && id.Name == fnName {
			e.IsTail = true
		}
	case *ast.IfExpr:
		markBlock(e.Then, fnName, tail)
		if e.Else != nil {
			markBlock(e.Else, fnName, tail)
		}
	case *ast.MatchExpr:
		for i := range e.Arms {
			markExpr(e.Arms[i].Body, fnName, tail)
		}
	case *ast.BlockExpr:
		markBlock(e.Block, fnName, tail)
	}
}
