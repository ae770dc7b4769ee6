package borrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuniruyuni/yunic/internal/ast"
	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/lifetime"
	"github.com/yuniruyuni/yunic/internal/types"
)

func TestChecker_MoveThenUseAgainFails(t *testing.T) {
	locals := map[string]*VarInfo{
		"s": {Type: types.String, IsMutable: false},
	}
	c := NewChecker(locals, lifetime.NewContext())
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.LetStmt{Name: "t", Value: &ast.Identifier{Name: "s"}},
		&ast.LetStmt{Name: "u", Value: &ast.Identifier{Name: "s"}},
	}}
	c.CheckBlock(block)

	errs := c.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diag.BRWUseAfterMove, errs[0].Code)
}

func TestChecker_MoveWhileBorrowedFails(t *testing.T) {
	locals := map[string]*VarInfo{
		"s": {Type: types.String, IsMutable: false},
	}
	life := lifetime.NewContext()
	c := NewChecker(locals, life)
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.LetStmt{Name: "r", Value: &ast.RefExpr{Target: &ast.Identifier{Name: "s"}}},
		&ast.LetStmt{Name: "w", Value: &ast.Identifier{Name: "s"}},
	}}
	c.CheckBlock(block)

	errs := c.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diag.BRWMoveWhileBorrowed, errs[0].Code)
	assert.False(t, life.IsMoved("s"))
}

func TestChecker_ReturnedBorrowOfLocalViolatesLifetimeConstraint(t *testing.T) {
	life := lifetime.NewContext()
	outer := life.DeclareNamed("a")
	inner := life.DeclareNamed("b")
	life.AddOutlivesConstraint(outer, inner)

	locals := map[string]*VarInfo{
		"v": {Type: types.I32Type, IsMutable: false},
	}
	c := NewChecker(locals, life)
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{Value: &ast.RefExpr{Target: &ast.Identifier{Name: "v"}}},
	}}
	c.CheckBlock(block)

	errs := c.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diag.LFTLifetimeError, errs[0].Code)
}

func TestChecker_ReturnedBorrowOfNamedLifetimeParamSatisfiesConstraint(t *testing.T) {
	life := lifetime.NewContext()
	outer := life.DeclareNamed("a")
	inner := life.DeclareNamed("b")
	life.AddOutlivesConstraint(outer, inner)

	locals := map[string]*VarInfo{
		"p": {Type: &types.TReference{Inner: types.I32Type}, Lifetime: inner, HasLifetime: true},
	}
	c := NewChecker(locals, life)
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{Value: &ast.RefExpr{Target: &ast.Identifier{Name: "p"}}},
	}}
	c.CheckBlock(block)

	assert.Empty(t, c.Errors())
}

func TestChecker_CopyTypeCanBeUsedTwice(t *testing.T) {
	locals := map[string]*VarInfo{
		"n": {Type: types.I32Type, IsMutable: false},
	}
	c := NewChecker(locals, lifetime.NewContext())
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.LetStmt{Name: "a", Value: &ast.Identifier{Name: "n"}},
		&ast.LetStmt{Name: "b", Value: &ast.Identifier{Name: "n"}},
	}}
	c.CheckBlock(block)

	assert.Empty(t, c.Errors())
}

func TestChecker_SecondMutableBorrowConflicts(t *testing.T) {
	locals := map[string]*VarInfo{
		"v": {Type: types.I32Type, IsMutable: true},
	}
	c := NewChecker(locals, lifetime.NewContext())
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.LetStmt{Name: "r1", Value: &ast.RefExpr{IsMutable: true, Target: &ast.Identifier{Name: "v"}}},
		&ast.LetStmt{Name: "r2", Value: &ast.RefExpr{IsMutable: true, Target: &ast.Identifier{Name: "v"}}},
	}}
	c.CheckBlock(block)

	errs := c.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diag.BRWMultipleMutableBorrows, errs[0].Code)
}

func TestChecker_SharedBorrowAfterMutableConflicts(t *testing.T) {
	locals := map[string]*VarInfo{
		"v": {Type: types.I32Type, IsMutable: true},
	}
	c := NewChecker(locals, lifetime.NewContext())
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.LetStmt{Name: "r1", Value: &ast.RefExpr{IsMutable: true, Target: &ast.Identifier{Name: "v"}}},
		&ast.LetStmt{Name: "r2", Value: &ast.RefExpr{IsMutable: false, Target: &ast.Identifier{Name: "v"}}},
	}}
	c.CheckBlock(block)

	errs := c.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diag.BRWMutableBorrowConflict, errs[0].Code)
}

func TestChecker_MultipleSharedBorrowsAllowed(t *testing.T) {
	locals := map[string]*VarInfo{
		"v": {Type: types.I32Type, IsMutable: false},
	}
	c := NewChecker(locals, lifetime.NewContext())
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.LetStmt{Name: "r1", Value: &ast.RefExpr{IsMutable: false, Target: &ast.Identifier{Name: "v"}}},
		&ast.LetStmt{Name: "r2", Value: &ast.RefExpr{IsMutable: false, Target: &ast.Identifier{Name: "v"}}},
	}}
	c.CheckBlock(block)

	assert.Empty(t, c.Errors())
}

func TestChecker_AssignToImmutableFails(t *testing.T) {
	locals := map[string]*VarInfo{
		"v": {Type: types.I32Type, IsMutable: false},
	}
	c := NewChecker(locals, lifetime.NewContext())
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.AssignExpr{
			Target: &ast.Identifier{Name: "v"},
			Value:  &ast.IntLit{Value: 5},
		}},
	}}
	c.CheckBlock(block)

	errs := c.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diag.BRWImmutableVariable, errs[0].Code)
}

func TestChecker_AssignToMutableSucceedsAndClearsMove(t *testing.T) {
	locals := map[string]*VarInfo{
		"v": {Type: types.I32Type, IsMutable: true},
	}
	life := lifetime.NewContext()
	life.MarkMoved("v")
	c := NewChecker(locals, life)
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.AssignExpr{
			Target: &ast.Identifier{Name: "v"},
			Value:  &ast.IntLit{Value: 5},
		}},
	}}
	c.CheckBlock(block)

	assert.Empty(t, c.Errors())
	assert.False(t, life.IsMoved("v"))
}

func TestChecker_AssignToBorrowedVariableFails(t *testing.T) {
	locals := map[string]*VarInfo{
		"v": {Type: types.I32Type, IsMutable: true},
	}
	life := lifetime.NewContext()
	life.AddBorrow("v", lifetime.Shared, life.NewAnonymousLifetime())
	c := NewChecker(locals, life)
	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.AssignExpr{
			Target: &ast.Identifier{Name: "v"},
			Value:  &ast.IntLit{Value: 5},
		}},
	}}
	c.CheckBlock(block)

	errs := c.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diag.BRWMutableBorrowConflict, errs[0].Code)
}
