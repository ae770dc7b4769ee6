package analyzer

import "github.com/yuniruyuni/yunic/internal/ast"

// BlockReturns implements §4.7: reports whether every control path
// through block unconditionally transfers control via `return`.
func BlockReturns(block *ast.Block) bool {
	if block == nil {
		return false
	}
	for _, stmt := range block.Stmts {
		if stmtReturns(stmt) {
			return true
		}
	}
	return false
}

func stmtReturns(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.ExprStmt:
		return exprReturns(s.Expr)
	default:
		return false
	}
}

// exprReturns handles the one place a bare expression statement can
// "return" on every path: a trailing if/else whose both arms return, a
// block expression whose block returns, or a match whose every arm body
// is a block that returns. Loops never contribute a definite return.
func exprReturns(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.IfExpr:
		if e.Else == nil {
			return false
		}
		return BlockReturns(e.Then) && BlockReturns(e.Else)
	case *ast.BlockExpr:
		return BlockReturns(e.Block)
	case *ast.MatchExpr:
		if len(e.Arms) == 0 {
			return false
		}
		for _, arm := range e.Arms {
			if be, ok := arm.Body.(*ast.BlockExpr); ok {
				if !BlockReturns(be.Block) {
					return false
				}
				continue
			}
			return false
		}
		return true
	default:
		return false
	}
}
