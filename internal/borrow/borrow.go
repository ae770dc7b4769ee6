// Package borrow implements the single-pass borrow checker (§4.4): it
// classifies every use of a symbol as a Read, Write, Borrow, or Move and
// enforces exclusivity between borrows and moves.
package borrow

import (
	"fmt"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/lifetime"
	"github.com/yuniruyuni/yunic/internal/symtab"
	"github.com/yuniruyuni/yunic/internal/typecheck"
	"github.com/yuniruyuni/yunic/internal/types"
)

// VarInfo is what the checker needs to know about a local binding: its
// declared type (to classify Copy vs Move) and whether it was declared
// mutable.
type VarInfo struct {
	Type      types.Type
	IsMutable bool

	// Lifetime is the named lifetime (from the function's `lives` clause)
	// this binding participates in, when HasLifetime is set. Assigned by
	// the driver to reference-typed parameters in declaration order so
	// returned borrows of them can be validated against declared outlives
	// constraints.
	Lifetime    int
	HasLifetime bool
}

// Checker walks one function body, consulting locals for variable
// metadata and life for scope/lifetime bookkeeping, and accumulates
// violations rather than aborting on the first one.
type Checker struct {
	locals map[string]*VarInfo
	life   *lifetime.Context
	errs   []*diag.Report
}

// NewChecker creates a borrow checker sharing the given lifetime context
// (populated by the driver with the function's `lives` clause) and local
// variable table.
func NewChecker(locals map[string]*VarInfo, life *lifetime.Context) *Checker {
	return &Checker{locals: locals, life: life}
}

// Errors returns the accumulated violations.
func (c *Checker) Errors() []*diag.Report {
	return c.errs
}

func (c *Checker) fail(code, msg string, pos ast.Pos) {
	c.failPhase(diag.PhaseBorrow, code, msg, pos)
}

func (c *Checker) failPhase(phase, code, msg string, pos ast.Pos) {
	span := &ast.Span{Start: pos, End: pos}
	c.errs = append(c.errs, diag.New(phase, code, msg, span))
}

// CheckBlock walks every statement of block.
func (c *Checker) CheckBlock(block *ast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Stmts {
		c.checkStmt(stmt)
	}
}

func (c *Checker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		c.checkExpr(s.Value)
		info := &VarInfo{IsMutable: s.IsMutable}
		if s.Type != nil {
			if ty, err := typecheck.ResolveASTType(s.Type, symtab.NewTypeRegistry(), nil); err == nil {
				info.Type = ty
			}
		}
		c.locals[s.Name] = info
	case *ast.ReturnStmt:
		if s.Value != nil {
			c.checkExpr(s.Value)
			c.checkReturnLifetime(s.Value)
		}
	case *ast.ExprStmt:
		c.checkExpr(s.Expr)
	}
}

// checkExpr performs a Read-classified walk of expr: the default
// treatment for an expression evaluated for its value, not assigned to or
// borrowed. Value-position uses of non-copy locals are Moves.
func (c *Checker) checkExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Identifier:
		c.useRead(e.Name, e.Pos)
	case *ast.BinaryExpr:
		c.checkExpr(e.Left)
		c.checkExpr(e.Right)
	case *ast.UnaryExpr:
		c.checkExpr(e.Operand)
	case *ast.CastExpr:
		c.checkExpr(e.Value)
	case *ast.CallExpr:
		c.checkExpr(e.Callee)
		for _, a := range e.Args {
			c.checkExpr(a)
		}
	case *ast.FieldAccessExpr:
		c.checkExpr(e.Receiver)
	case *ast.MethodCallExpr:
		c.checkExpr(e.Receiver)
		for _, a := range e.Args {
			c.checkExpr(a)
		}
	case *ast.StructLitExpr:
		for _, f := range e.Fields {
			c.checkExpr(f.Value)
		}
	case *ast.EnumLitExpr:
		for _, el := range e.Elements {
			c.checkExpr(el)
		}
		for _, f := range e.Fields {
			c.checkExpr(f.Value)
		}
	case *ast.ArrayLitExpr:
		for _, el := range e.Elements {
			c.checkExpr(el)
		}
	case *ast.TupleLitExpr:
		for _, el := range e.Elements {
			c.checkExpr(el)
		}
	case *ast.IndexExpr:
		c.checkExpr(e.Receiver)
		c.checkExpr(e.Index)
	case *ast.RefExpr:
		c.checkBorrow(e)
	case *ast.DerefExpr:
		c.checkExpr(e.Target)
	case *ast.AssignExpr:
		c.checkExpr(e.Value)
		c.checkAssignTarget(e.Target)
	case *ast.IfExpr:
		c.checkExpr(e.Cond)
		c.CheckBlock(e.Then)
		if e.Else != nil {
			c.CheckBlock(e.Else)
		}
	case *ast.WhileExpr:
		c.checkExpr(e.Cond)
		c.CheckBlock(e.Body)
	case *ast.ForExpr:
		if e.Init != nil {
			c.checkStmt(e.Init)
		}
		if e.Cond != nil {
			c.checkExpr(e.Cond)
		}
		c.CheckBlock(e.Body)
		if e.Update != nil {
			c.checkExpr(e.Update)
		}
	case *ast.MatchExpr:
		c.checkExpr(e.Scrutinee)
		for _, arm := range e.Arms {
			if arm.Guard != nil {
				c.checkExpr(arm.Guard)
			}
			c.checkExpr(arm.Body)
		}
	case *ast.BlockExpr:
		c.CheckBlock(e.Block)
	}
}

// useRead classifies a value-position identifier use: forbidden if the
// symbol was already moved, and itself a Move if the symbol's type is
// non-Copy.
func (c *Checker) useRead(name string, pos ast.Pos) {
	info, ok := c.locals[name]
	if !ok {
		return
	}
	if c.life.IsMoved(name) {
		c.fail(diag.BRWUseAfterMove, fmt.Sprintf("use of moved value %q", name), pos)
		return
	}
	if info.Type != nil && !types.IsCopy(info.Type) {
		if len(c.life.ActiveBorrows(name)) > 0 {
			c.fail(diag.BRWMoveWhileBorrowed, fmt.Sprintf("cannot move %q while it is borrowed", name), pos)
			return
		}
		c.life.MarkMoved(name)
	}
}

func (c *Checker) checkBorrow(ref *ast.RefExpr) {
	name, pos, ok := baseIdentifier(ref.Target)
	if !ok {
		c.checkExpr(ref.Target)
		return
	}
	if c.life.IsMoved(name) {
		c.fail(diag.BRWUseAfterMove, fmt.Sprintf("cannot borrow moved value %q", name), pos)
		return
	}
	kind := lifetime.Shared
	if ref.IsMutable {
		kind = lifetime.Mutable
	}
	if err := c.life.CheckBorrows(name, kind); err != nil {
		code := diag.BRWMutableBorrowConflict
		if ref.IsMutable && hasMutable(c.life.ActiveBorrows(name)) {
			code = diag.BRWMultipleMutableBorrows
		}
		c.fail(code, err.Error(), pos)
		return
	}
	var life int
	if info, ok := c.locals[name]; ok && info.HasLifetime {
		life = info.Lifetime
	} else {
		life = c.life.NewAnonymousLifetime()
	}
	c.life.AddBorrow(name, kind, life)
}

// checkReturnLifetime validates a directly-returned reference expression
// against every lifetime the enclosing function's `lives` clause promised
// to satisfy (§4.4: "a reference's lifetime must satisfy every declared
// outlives constraint"). A borrow of a local with no named lifetime (e.g.
// a reference to a stack variable) can never DoesOutlive a declared
// target, surfacing the classic dangling-reference-on-return bug.
func (c *Checker) checkReturnLifetime(expr ast.Expr) {
	ref, ok := expr.(*ast.RefExpr)
	if !ok {
		return
	}
	targets := c.life.ConstraintTargets()
	if len(targets) == 0 {
		return
	}
	name, pos, ok := baseIdentifier(ref.Target)
	if !ok {
		return
	}
	borrows := c.life.ActiveBorrows(name)
	if len(borrows) == 0 {
		return
	}
	life := borrows[len(borrows)-1].Lifetime
	for _, t := range targets {
		if !c.life.DoesOutlive(life, t) {
			c.failPhase(diag.PhaseLifetime, diag.LFTLifetimeError,
				fmt.Sprintf("returned reference to %q does not satisfy the function's declared lifetime constraints", name), pos)
			return
		}
	}
}

func (c *Checker) checkAssignTarget(target ast.Expr) {
	switch t := target.(type) {
	case *ast.Identifier:
		info, ok := c.locals[t.Name]
		if ok && !info.IsMutable {
			c.fail(diag.BRWImmutableVariable, fmt.Sprintf("cannot assign to immutable variable %q", t.Name), t.Pos)
			return
		}
		if active := c.life.ActiveBorrows(t.Name); len(active) > 0 {
			c.fail(diag.BRWMutableBorrowConflict, fmt.Sprintf("cannot assign to borrowed variable %q", t.Name), t.Pos)
			return
		}
		c.life.UnmarkMoved(t.Name)
	case *ast.FieldAccessExpr:
		name, pos, ok := baseIdentifier(t.Receiver)
		if ok {
			info, exists := c.locals[name]
			if exists && !info.IsMutable {
				c.fail(diag.BRWImmutableVariable, fmt.Sprintf("cannot assign through immutable variable %q", name), pos)
				return
			}
		}
		c.checkExpr(t.Receiver)
	case *ast.IndexExpr:
		c.checkExpr(t.Receiver)
		c.checkExpr(t.Index)
	case *ast.DerefExpr:
		c.checkExpr(t.Target)
	}
}

func hasMutable(borrows []lifetime.Borrow) bool {
	for _, b := range borrows {
		if b.Kind == lifetime.Mutable {
			return true
		}
	}
	return false
}

func baseIdentifier(expr ast.Expr) (string, ast.Pos, bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name, e.Pos, true
	case *ast.FieldAccessExpr:
		return baseIdentifier(e.Receiver)
	case *ast.IndexExpr:
		return baseIdentifier(e.Receiver)
	default:
		return "", ast.Pos{}, false
	}
}
