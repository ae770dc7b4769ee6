package codegen

import (
	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/typecheck"
)

// genBlock lowers every statement of block in turn, in a fresh scope
// nested under parent. It reports whether the block's last generated
// instruction already terminates its basic block (a return, or a branch
// out of a fully-terminating if/match), mirroring the teacher's gen()'s
// boolean result — callers use this to decide whether a trailing
// `br`/`ret` still needs to be synthesized, and to stop lowering any
// statement that would follow a terminator in the same block.
func (g *Generator) genBlock(block *ast.Block, parent *scope) (bool, error) {
	sc := newScope(parent)
	if block == nil {
		return false, nil
	}
	for _, stmt := range block.Stmts {
		terminated, err := g.genStmt(stmt, sc)
		if err != nil {
			return false, err
		}
		if terminated {
			return true, nil
		}
	}
	return false, nil
}

func (g *Generator) genStmt(stmt ast.Stmt, sc *scope) (bool, error) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return false, g.genLet(s, sc)
	case *ast.ReturnStmt:
		return true, g.genReturn(s, sc)
	case *ast.ExprStmt:
		return g.genExprStmt(s.Expr, sc)
	default:
		return false, cgFail(diag.CGUnimplemented, "unsupported statement node", stmt.Position())
	}
}

// genExprStmt lowers an expression used for its effect. If/While/For/Match
// are routed to their dedicated control-flow lowering, which reports
// whether every path inside returns. Every other expression, a BlockExpr
// whose block returns included, goes through the generic genExpr, which
// only ever produces a value and never reports termination.
func (g *Generator) genExprStmt(expr ast.Expr, sc *scope) (bool, error) {
	switch e := expr.(type) {
	case *ast.IfExpr:
		return g.genIf(e, sc)
	case *ast.WhileExpr:
		return g.genWhile(e, sc)
	case *ast.ForExpr:
		return g.genFor(e, sc)
	case *ast.MatchExpr:
		return g.genMatch(e, sc)
	default:
		_, _, err := g.genExpr(expr, sc)
		return false, err
	}
}

func (g *Generator) genLet(s *ast.LetStmt, sc *scope) error {
	val, valTy, err := g.genExpr(s.Value, sc)
	if err != nil {
		return err
	}
	declTy := valTy
	if s.Type != nil {
		resolved, err := typecheck.ResolveASTType(s.Type, g.reg, nil)
		if err != nil {
			return cgFail(diag.CGTypeError, err.Error(), s.Pos)
		}
		declTy = resolved
	}
	lt, err := g.types.Lower(declTy)
	if err != nil {
		return cgFail(diag.CGInvalidType, err.Error(), s.Pos)
	}
	slot := g.builder.CreateAlloca(lt, s.Name)
	g.builder.CreateStore(val, slot)
	sc.define(s.Name, slot, declTy)
	return nil
}

func (g *Generator) genReturn(s *ast.ReturnStmt, sc *scope) error {
	if s.Value == nil {
		g.builder.CreateRetVoid()
		return nil
	}
	val, _, err := g.genExpr(s.Value, sc)
	if err != nil {
		return err
	}
	g.builder.CreateRet(val)
	return nil
}
